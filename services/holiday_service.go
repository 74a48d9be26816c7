package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/stafflink/portal_backend/cache"
	"github.com/stafflink/portal_backend/models"
)

// HolidayService fetches per-country public holiday calendars, cached per
// country code for 7 days.
type HolidayService struct {
	baseURL string
	client  *http.Client
	cache   *cache.Store
}

// NewHolidayService creates a holiday calendar client from environment
// variables.
func NewHolidayService(store *cache.Store) *HolidayService {
	baseURL := os.Getenv("HOLIDAY_API_URL")
	if baseURL == "" {
		log.Printf("WARNING: HOLIDAY_API_URL is not set, holiday calendars will be unavailable")
	}
	return &HolidayService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   store,
	}
}

// ForCountry returns the current year's holiday list for a country through
// the 7d cache.
func (s *HolidayService) ForCountry(ctx context.Context, country string) ([]models.Holiday, cache.Source, error) {
	return cache.FetchThrough(ctx, s.cache, cache.Holidays, country, func(ctx context.Context) ([]models.Holiday, error) {
		if s.baseURL == "" {
			return nil, fmt.Errorf("%w: holiday service not configured", models.ErrUpstream)
		}
		year := strconv.Itoa(time.Now().Year())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/publicholidays/"+year+"/"+country, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: holiday API returned %d", models.ErrUpstream, resp.StatusCode)
		}
		var holidays []models.Holiday
		if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
			return nil, fmt.Errorf("%w: bad holiday response: %v", models.ErrUpstream, err)
		}
		return holidays, nil
	})
}
