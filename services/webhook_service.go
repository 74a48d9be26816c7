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

// WebhookService forwards expense refund submissions to the finance
// automation webhook. The webhook is fire-and-confirm: the portal waits for
// a 2xx but keeps no record beyond the notification it creates afterwards.
type WebhookService struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookService creates the automation webhook client from environment
// variables.
func NewWebhookService() *WebhookService {
	url := os.Getenv("AUTOMATION_WEBHOOK_URL")
	if url == "" {
		log.Printf("WARNING: AUTOMATION_WEBHOOK_URL is not set, expense refunds will be unavailable")
	}
	return &WebhookService{
		url:    url,
		secret: os.Getenv("AUTOMATION_WEBHOOK_SECRET"),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// ForwardExpense posts an expense refund to the automation webhook.
func (s *WebhookService) ForwardExpense(ctx context.Context, email string, req *models.ExpenseRefundRequest) error {
	if s.url == "" {
		return fmt.Errorf("%w: automation webhook not configured", models.ErrUpstream)
	}
	payload, err := json.Marshal(map[string]interface{}{
		"email":       email,
		"amount":      req.Amount,
		"currency":    req.Currency,
		"description": req.Description,
		"receipt_url": req.ReceiptURL,
		"submitted":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		httpReq.Header.Set("X-Webhook-Secret", s.secret)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: automation webhook returned %d", models.ErrUpstream, resp.StatusCode)
	}
	return nil
}
