package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/stafflink/portal_backend/cache"
	"github.com/stafflink/portal_backend/models"
)

// StaffingService talks to the upstream staffing system that owns the team
// directory and per-member contract data. Every read goes through the cache
// with the stale-fallback contract, so a flaky upstream degrades to
// slightly old data instead of an error page.
type StaffingService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Store
}

// NewStaffingService creates a staffing client from environment variables.
func NewStaffingService(store *cache.Store) *StaffingService {
	baseURL := os.Getenv("STAFFING_API_URL")
	apiKey := os.Getenv("STAFFING_API_KEY")
	if baseURL == "" || apiKey == "" {
		log.Printf("WARNING: staffing service not fully configured, set STAFFING_API_URL and STAFFING_API_KEY")
	}
	return &StaffingService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   store,
	}
}

func (s *StaffingService) getJSON(ctx context.Context, path string, out interface{}) error {
	if s.baseURL == "" {
		return fmt.Errorf("%w: staffing service not configured", models.ErrUpstream)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: staffing service returned %d: %s", models.ErrUpstream, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: bad staffing response: %v", models.ErrUpstream, err)
	}
	return nil
}

// Directory returns the full team directory snapshot, cached for 7 days.
func (s *StaffingService) Directory(ctx context.Context) ([]models.TeamMember, cache.Source, error) {
	return cache.FetchThrough(ctx, s.cache, cache.Directory, "", func(ctx context.Context) ([]models.TeamMember, error) {
		var members []models.TeamMember
		if err := s.getJSON(ctx, "/members", &members); err != nil {
			return nil, err
		}
		return members, nil
	})
}

// Profile returns one member's profile/contract view, cached per email for
// an hour.
func (s *StaffingService) Profile(ctx context.Context, email string) (*models.MemberProfile, cache.Source, error) {
	return cache.FetchThrough(ctx, s.cache, cache.Profile, email, func(ctx context.Context) (*models.MemberProfile, error) {
		var profile models.MemberProfile
		if err := s.getJSON(ctx, "/members/"+email, &profile); err != nil {
			return nil, err
		}
		return &profile, nil
	})
}
