package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stafflink/portal_backend/models"
)

type leaveSystemStub struct {
	logins      atomic.Int32
	rejectToken atomic.Bool
	token       string
}

func newLeaveSystem(t *testing.T) (*leaveSystemStub, *LeaveService) {
	t.Helper()
	stub := &leaveSystemStub{token: "session-1"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			stub.logins.Add(1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"token":      stub.token,
				"expires_in": 3600,
			})
		case "/leaves":
			if stub.rejectToken.Load() || r.Header.Get("X-Session-Token") != stub.token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			switch r.Method {
			case http.MethodPost:
				json.NewEncoder(w).Encode(models.LeaveEntry{
					ID: "leave-1", StartDate: "2026-09-01", EndDate: "2026-09-05",
					Type: "vacation", Status: "pending",
				})
			case http.MethodGet:
				json.NewEncoder(w).Encode([]models.LeaveEntry{
					{ID: "leave-1", Status: "approved"},
				})
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	t.Setenv("LEAVE_API_URL", server.URL)
	t.Setenv("LEAVE_API_USER", "portal")
	t.Setenv("LEAVE_API_PASSWORD", "secret")
	return stub, NewLeaveService()
}

func TestLeaveService_CredentialIsReusedAcrossCalls(t *testing.T) {
	stub, svc := newLeaveSystem(t)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, "a@x.com", &models.LeaveRequest{
		StartDate: "2026-09-01", EndDate: "2026-09-05", Type: "vacation",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if entry.ID != "leave-1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := svc.ListForMember(ctx, "a@x.com"); err != nil {
		t.Fatalf("list: %v", err)
	}

	// One login serves both calls: the token is held with its expiry, not
	// re-fetched per request.
	if got := stub.logins.Load(); got != 1 {
		t.Fatalf("login called %d times, want 1", got)
	}
}

func TestLeaveService_RejectedSessionTriggersRelogin(t *testing.T) {
	stub, svc := newLeaveSystem(t)
	ctx := context.Background()

	if _, err := svc.ListForMember(ctx, "a@x.com"); err != nil {
		t.Fatalf("list: %v", err)
	}

	// The leave system invalidates the session server-side.
	stub.rejectToken.Store(true)
	if _, err := svc.ListForMember(ctx, "a@x.com"); err == nil {
		t.Fatal("expected the rejected session to surface an error")
	}

	// The next call logs in again instead of replaying the dead token.
	stub.rejectToken.Store(false)
	if _, err := svc.ListForMember(ctx, "a@x.com"); err != nil {
		t.Fatalf("list after relogin: %v", err)
	}
	if got := stub.logins.Load(); got != 2 {
		t.Fatalf("login called %d times, want 2", got)
	}
}

func TestLeaveService_UnconfiguredIsUpstreamError(t *testing.T) {
	t.Setenv("LEAVE_API_URL", "")
	t.Setenv("LEAVE_API_USER", "")
	t.Setenv("LEAVE_API_PASSWORD", "")
	svc := NewLeaveService()

	_, err := svc.ListForMember(context.Background(), "a@x.com")
	if err == nil {
		t.Fatal("expected an error")
	}
}
