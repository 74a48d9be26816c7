package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/stafflink/portal_backend/models"
)

// DefaultPollInterval is how often a feed refreshes itself from the store.
const DefaultPollInterval = 60 * time.Second

// NotificationSource is the slice of the store a feed needs.
type NotificationSource interface {
	List(ctx context.Context, email string, filter models.NotificationFilter) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, email string) (*models.Notification, error)
}

// NotificationFeed keeps the authoritative notification list for one signed-in
// session. It always polls the full unfiltered list so the UI can switch
// between read/unread views and recompute the unread badge without another
// round trip.
type NotificationFeed struct {
	source   NotificationSource
	email    string
	interval time.Duration

	mu            sync.RWMutex
	notifications []*models.Notification
	filter        models.NotificationFilter
	lastErr       string
	onUpdate      func()

	cancel context.CancelFunc
	done   chan struct{}
}

// NewNotificationFeed creates a feed for the given recipient identity. The
// display filter starts on unread, matching the badge most users open the
// panel for.
func NewNotificationFeed(source NotificationSource, email string) *NotificationFeed {
	return &NotificationFeed{
		source:        source,
		email:         email,
		interval:      DefaultPollInterval,
		filter:        models.FilterUnread,
		notifications: []*models.Notification{},
	}
}

// SetInterval overrides the poll interval. Tests use short intervals.
func (f *NotificationFeed) SetInterval(d time.Duration) {
	f.interval = d
}

// SetOnUpdate registers a callback fired after every successful refresh, so
// a push transport can forward the new state without polling the feed. Must
// be set before Start.
func (f *NotificationFeed) SetOnUpdate(fn func()) {
	f.mu.Lock()
	f.onUpdate = fn
	f.mu.Unlock()
}

// Start fetches once immediately, then keeps polling until Stop is called
// or ctx is cancelled. A failed poll never stops the loop: the previous
// list stays visible and the next tick tries again.
func (f *NotificationFeed) Start(ctx context.Context) {
	if f.cancel != nil {
		// Already polling; a second loop would leak.
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})

	go func() {
		defer close(f.done)

		if err := f.Refresh(ctx); err != nil {
			log.Printf("notification feed: initial poll for %s failed: %v", f.email, err)
		}

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				f.clear()
				return
			case <-ticker.C:
				if err := f.Refresh(ctx); err != nil {
					log.Printf("notification feed: poll for %s failed: %v", f.email, err)
				}
			}
		}
	}()
}

// Stop halts polling and clears local state, as on logout.
func (f *NotificationFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
		<-f.done
		f.cancel = nil
	}
}

func (f *NotificationFeed) clear() {
	f.mu.Lock()
	f.notifications = []*models.Notification{}
	f.lastErr = ""
	f.mu.Unlock()
}

// Refresh replaces the authoritative list with a fresh unfiltered fetch.
// On failure the previous list is kept and the error is recorded for the
// UI; the error is also returned for callers that poll manually.
func (f *NotificationFeed) Refresh(ctx context.Context) error {
	list, err := f.source.List(ctx, f.email, models.FilterAll)
	if err != nil {
		f.mu.Lock()
		f.lastErr = fmt.Sprintf("failed to refresh notifications: %v", err)
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	f.notifications = list
	f.lastErr = ""
	fn := f.onUpdate
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// LastError returns the session-visible error from the most recent failed
// operation, or "" when the last poll succeeded.
func (f *NotificationFeed) LastError() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

// All returns the authoritative unfiltered list. Entries are detached
// copies: callers can hold them across a concurrent mark-read without
// racing the in-place update.
func (f *NotificationFeed) All() []*models.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*models.Notification, len(f.notifications))
	for i, n := range f.notifications {
		clone := *n
		out[i] = &clone
	}
	return out
}

// UnreadCount is the badge value: entries with no read timestamp.
func (f *NotificationFeed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, n := range f.notifications {
		if !n.IsRead() {
			count++
		}
	}
	return count
}

// SetFilter changes the display filter for Visible.
func (f *NotificationFeed) SetFilter(filter models.NotificationFilter) {
	f.mu.Lock()
	f.filter = filter
	f.mu.Unlock()
}

// Filter returns the current display filter.
func (f *NotificationFeed) Filter() models.NotificationFilter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter
}

// Visible derives the display list from the authoritative one using the
// current filter, without touching the store. Entries are detached copies,
// like All.
func (f *NotificationFeed) Visible() []*models.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []*models.Notification{}
	for _, n := range f.notifications {
		switch f.filter {
		case models.FilterRead:
			if !n.IsRead() {
				continue
			}
		case models.FilterUnread:
			if n.IsRead() {
				continue
			}
		}
		clone := *n
		out = append(out, &clone)
	}
	return out
}

// MarkAsRead flips the entry locally before the store call so the badge
// updates instantly, then confirms with the store. When the store call
// fails the optimistic flip is reverted and the error surfaced; the next
// poll would reconcile anyway, but reverting keeps the badge honest in the
// meantime.
func (f *NotificationFeed) MarkAsRead(ctx context.Context, id string) error {
	f.mu.Lock()
	var target *models.Notification
	var previous *time.Time
	for _, n := range f.notifications {
		if n.ID == id {
			target = n
			previous = n.ReadAt
			if n.ReadAt == nil {
				now := time.Now()
				n.ReadAt = &now
			}
			break
		}
	}
	f.mu.Unlock()

	updated, err := f.source.MarkRead(ctx, id, f.email)
	if err != nil {
		f.mu.Lock()
		if target != nil {
			target.ReadAt = previous
		}
		f.lastErr = fmt.Sprintf("failed to mark notification as read: %v", err)
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	if target != nil {
		// Adopt the server timestamp over the optimistic client one.
		target.ReadAt = updated.ReadAt
		target.UpdatedAt = updated.UpdatedAt
	}
	f.lastErr = ""
	f.mu.Unlock()
	return nil
}

// MarkAllAsRead fires MarkAsRead concurrently for every unread entry in the
// display list. There is no atomicity: a partial failure leaves some
// entries read and others not, and the caller gets one aggregate error.
func (f *NotificationFeed) MarkAllAsRead(ctx context.Context) error {
	var ids []string
	for _, n := range f.Visible() {
		if !n.IsRead() {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := f.MarkAsRead(ctx, id); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	failed := len(errs)
	if failed > 0 {
		err := fmt.Errorf("failed to mark %d of %d notifications as read", failed, len(ids))
		f.mu.Lock()
		f.lastErr = err.Error()
		f.mu.Unlock()
		return err
	}
	return nil
}

// Open handles a notification click: ensure the entry is marked read, then
// return the portal path its module tag points at. Unknown tags land on
// the portal root.
func (f *NotificationFeed) Open(ctx context.Context, id string) (string, error) {
	if err := f.MarkAsRead(ctx, id); err != nil {
		return "", err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, n := range f.notifications {
		if n.ID == id {
			return models.RouteForModule(n.Module), nil
		}
	}
	return "/", nil
}
