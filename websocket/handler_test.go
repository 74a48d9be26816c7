package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/models"
)

// stubFeed records lifecycle calls and hands the test the update callback.
type stubFeed struct {
	mu       sync.Mutex
	onUpdate func()
	started  atomic.Bool
	stopped  atomic.Bool
	unread   int
	visible  []*models.Notification
}

func (s *stubFeed) SetOnUpdate(fn func()) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

func (s *stubFeed) Start(ctx context.Context) { s.started.Store(true) }
func (s *stubFeed) Stop()                     { s.stopped.Store(true) }
func (s *stubFeed) UnreadCount() int          { return s.unread }

func (s *stubFeed) Visible() []*models.Notification { return s.visible }

func (s *stubFeed) fireUpdate() {
	s.mu.Lock()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func dialTestSocket(t *testing.T, hub *Hub, feed Feed) *websocket.Conn {
	t.Helper()
	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub, "a@x.com", feed)
	})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func TestHandleWebSocket_RunsFeedForTheSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	feed := &stubFeed{
		unread: 2,
		visible: []*models.Notification{
			{ID: "n1", RecipientEmail: "a@x.com", Message: "one", Module: models.ModuleLeaves},
			{ID: "n2", RecipientEmail: "a@x.com", Message: "two", Module: models.ModuleCompany},
		},
	}
	conn := dialTestSocket(t, hub, feed)

	if event := readEvent(t, conn); event.Type != EventTypeConnected || event.Email != "a@x.com" {
		t.Fatalf("unexpected greeting: %+v", event)
	}
	// The greeting goes out just before the feed starts; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for !feed.started.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !feed.started.Load() {
		t.Fatal("the session feed must be started with the socket")
	}

	// A refresh lands on the socket as a feed event.
	feed.fireUpdate()
	event := readEvent(t, conn)
	if event.Type != EventTypeFeed {
		t.Fatalf("want feed event, got %+v", event)
	}
	snapshot, ok := event.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected payload: %#v", event.Data)
	}
	if snapshot["unread"] != float64(2) {
		t.Fatalf("unread badge not forwarded: %#v", snapshot)
	}
	if entries, ok := snapshot["notifications"].([]interface{}); !ok || len(entries) != 2 {
		t.Fatalf("visible entries not forwarded: %#v", snapshot["notifications"])
	}
}

func TestHandleWebSocket_StopsFeedOnDisconnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	feed := &stubFeed{}
	conn := dialTestSocket(t, hub, feed)
	readEvent(t, conn)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !feed.stopped.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !feed.stopped.Load() {
		t.Fatal("disconnecting must stop the session feed")
	}
}

func TestHandleWebSocket_PushReachesRegisteredSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestSocket(t, hub, nil)
	readEvent(t, conn)

	n := &models.Notification{ID: "n1", RecipientEmail: "a@x.com", Message: "hello", Module: models.ModuleLeaves}
	// Registration races the dial; retry until the hub knows the session.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := hub.SendToRecipient("a@x.com", Event{Type: EventTypeNotification, Email: "a@x.com", Data: n}); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	event := readEvent(t, conn)
	if event.Type != EventTypeNotification {
		t.Fatalf("want notification event, got %+v", event)
	}
}

func TestClientWriteJSON_SerializesConcurrentWrites(t *testing.T) {
	serverConns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	client := &Client{Email: "a@x.com", Conn: <-serverConns}
	t.Cleanup(func() { client.Conn.Close() })

	// A push from the hub racing a feed event must not trip the
	// one-writer rule of the underlying connection.
	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.WriteJSON(Event{Type: EventTypeNotification, Email: "a@x.com"}); err != nil {
				t.Errorf("write: %v", err)
			}
		}()
	}

	for i := 0; i < writers; i++ {
		peer.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event Event
		if err := peer.ReadJSON(&event); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	wg.Wait()
}
