package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/stafflink/portal_backend/models"
)

// NewsService reads company news from a Notion database. The portal only
// renders the list; Notion stays the source of truth.
type NewsService struct {
	token      string
	databaseID string
	client     *http.Client
}

const notionAPIBase = "https://api.notion.com/v1"

// NewNewsService creates a Notion-backed news client from environment
// variables.
func NewNewsService() *NewsService {
	token := os.Getenv("NOTION_TOKEN")
	databaseID := os.Getenv("NOTION_NEWS_DATABASE_ID")
	if token == "" || databaseID == "" {
		log.Printf("WARNING: company news not fully configured, set NOTION_TOKEN and NOTION_NEWS_DATABASE_ID")
	}
	return &NewsService{
		token:      token,
		databaseID: databaseID,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// notionPage is the slice of a Notion query result the news list needs.
type notionPage struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Properties struct {
		Title struct {
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"Title"`
		Summary struct {
			RichText []struct {
				PlainText string `json:"plain_text"`
			} `json:"rich_text"`
		} `json:"Summary"`
		Published struct {
			Date *struct {
				Start string `json:"start"`
			} `json:"date"`
		} `json:"Published"`
	} `json:"properties"`
}

// List queries the news database, newest first.
func (s *NewsService) List(ctx context.Context) ([]models.NewsItem, error) {
	if s.token == "" || s.databaseID == "" {
		return nil, fmt.Errorf("%w: news service not configured", models.ErrUpstream)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"sorts": []map[string]string{
			{"property": "Published", "direction": "descending"},
		},
	})
	url := fmt.Sprintf("%s/databases/%s/query", notionAPIBase, s.databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", "2022-06-28")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: notion returned %d", models.ErrUpstream, resp.StatusCode)
	}

	var result struct {
		Results []notionPage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: bad notion response: %v", models.ErrUpstream, err)
	}

	items := make([]models.NewsItem, 0, len(result.Results))
	for _, page := range result.Results {
		item := models.NewsItem{ID: page.ID, URL: page.URL}
		if len(page.Properties.Title.Title) > 0 {
			item.Title = page.Properties.Title.Title[0].PlainText
		}
		if len(page.Properties.Summary.RichText) > 0 {
			item.Summary = page.Properties.Summary.RichText[0].PlainText
		}
		if page.Properties.Published.Date != nil {
			if t, err := time.Parse("2006-01-02", page.Properties.Published.Date.Start); err == nil {
				item.PublishedAt = t
			} else if t, err := time.Parse(time.RFC3339, page.Properties.Published.Date.Start); err == nil {
				item.PublishedAt = t
			}
		}
		items = append(items, item)
	}
	return items, nil
}
