package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/stafflink/portal_backend/models"
)

// leaveCredential holds the session token for the leave system together
// with its expiry. It replaces the process-wide mutable token the portal
// used to keep: the credential lives inside the service it belongs to and
// is refreshed lazily under a lock, so two requests racing an expired token
// trigger exactly one login.
type leaveCredential struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (c *leaveCredential) get(ctx context.Context, login func(ctx context.Context) (string, time.Time, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.expiresAt) {
		return c.token, nil
	}
	token, expiresAt, err := login(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiresAt = expiresAt
	return token, nil
}

// invalidate drops the cached token so the next call logs in again.
func (c *leaveCredential) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// LeaveService talks to the Redmine-compatible leave system. Submissions
// and listings are passthrough; the portal keeps no leave state of its own.
type LeaveService struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	cred     *leaveCredential
}

// NewLeaveService creates a leave system client from environment variables.
func NewLeaveService() *LeaveService {
	baseURL := os.Getenv("LEAVE_API_URL")
	username := os.Getenv("LEAVE_API_USER")
	password := os.Getenv("LEAVE_API_PASSWORD")
	if baseURL == "" || username == "" || password == "" {
		log.Printf("WARNING: leave system not fully configured, set LEAVE_API_URL, LEAVE_API_USER and LEAVE_API_PASSWORD")
	}
	return &LeaveService{
		baseURL:  baseURL,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 20 * time.Second},
		cred:     &leaveCredential{},
	}
}

// login authenticates against the leave system and returns a session token
// with its expiry.
func (s *LeaveService) login(ctx context.Context) (string, time.Time, error) {
	if s.baseURL == "" {
		return "", time.Time{}, fmt.Errorf("%w: leave system not configured", models.ErrUpstream)
	}
	payload, _ := json.Marshal(map[string]string{
		"login":    s.username,
		"password": s.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/login", bytes.NewBuffer(payload))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("%w: leave system login returned %d", models.ErrUpstream, resp.StatusCode)
	}

	var result struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Token == "" {
		return "", time.Time{}, fmt.Errorf("%w: bad login response", models.ErrUpstream)
	}
	ttl := time.Duration(result.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	// Refresh a minute early so in-flight requests don't straddle expiry.
	return result.Token, time.Now().Add(ttl - time.Minute), nil
}

func (s *LeaveService) doAuthed(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	token, err := s.cred.get(ctx, s.login)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Token", token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Session expired server-side; drop it so the next call re-logs.
		s.cred.invalidate()
		return nil, fmt.Errorf("%w: leave system session rejected", models.ErrUpstream)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: leave system returned %d", models.ErrUpstream, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Submit files a leave request on behalf of the given member and returns
// the created entry.
func (s *LeaveService) Submit(ctx context.Context, email string, req *models.LeaveRequest) (*models.LeaveEntry, error) {
	raw, err := s.doAuthed(ctx, http.MethodPost, "/leaves", map[string]interface{}{
		"email":      email,
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"type":       req.Type,
		"comment":    req.Comment,
	})
	if err != nil {
		return nil, err
	}
	var entry models.LeaveEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: bad leave response: %v", models.ErrUpstream, err)
	}
	return &entry, nil
}

// ListForMember returns the member's own leave records.
func (s *LeaveService) ListForMember(ctx context.Context, email string) ([]models.LeaveEntry, error) {
	raw, err := s.doAuthed(ctx, http.MethodGet, "/leaves?email="+email, nil)
	if err != nil {
		return nil, err
	}
	var entries []models.LeaveEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: bad leave response: %v", models.ErrUpstream, err)
	}
	return entries, nil
}
