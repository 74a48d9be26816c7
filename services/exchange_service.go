package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/stafflink/portal_backend/cache"
	"github.com/stafflink/portal_backend/models"
)

// ExchangeService fetches the daily exchange-rate snapshot used on the
// expense refund form. One global snapshot, cached for 24 hours.
type ExchangeService struct {
	baseURL string
	base    string
	client  *http.Client
	cache   *cache.Store
}

// NewExchangeService creates an exchange-rate client from environment
// variables. The base currency defaults to EUR.
func NewExchangeService(store *cache.Store) *ExchangeService {
	baseURL := os.Getenv("EXCHANGE_API_URL")
	if baseURL == "" {
		log.Printf("WARNING: EXCHANGE_API_URL is not set, exchange rates will be unavailable")
	}
	baseCurrency := os.Getenv("EXCHANGE_BASE_CURRENCY")
	if baseCurrency == "" {
		baseCurrency = "EUR"
	}
	return &ExchangeService{
		baseURL: baseURL,
		base:    baseCurrency,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   store,
	}
}

// Rates returns the current snapshot through the 24h cache.
func (s *ExchangeService) Rates(ctx context.Context) (*models.ExchangeRates, cache.Source, error) {
	return cache.FetchThrough(ctx, s.cache, cache.ExchangeRates, "", func(ctx context.Context) (*models.ExchangeRates, error) {
		if s.baseURL == "" {
			return nil, fmt.Errorf("%w: exchange service not configured", models.ErrUpstream)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/latest?base="+s.base, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: exchange API returned %d", models.ErrUpstream, resp.StatusCode)
		}
		var rates models.ExchangeRates
		if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
			return nil, fmt.Errorf("%w: bad exchange response: %v", models.ErrUpstream, err)
		}
		rates.FetchedAt = time.Now().UTC()
		return &rates, nil
	})
}
