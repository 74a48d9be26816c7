package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/stafflink/portal_backend/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Feed is the per-session notification state a socket forwards. Satisfied
// by services.NotificationFeed.
type Feed interface {
	SetOnUpdate(fn func())
	Start(ctx context.Context)
	Stop()
	UnreadCount() int
	Visible() []*models.Notification
}

// FeedSnapshot is the payload of a feed event: the unread badge and the
// entries visible under the session's current filter.
type FeedSnapshot struct {
	Unread        int                    `json:"unread"`
	Notifications []*models.Notification `json:"notifications"`
}

// HandleWebSocket upgrades an authenticated portal session to a WebSocket
// connection registered under the session's email, and runs the session's
// notification feed for as long as the socket is open: every refresh is
// pushed down as a feed event, and disconnecting stops the polling loop.
func HandleWebSocket(c echo.Context, hub *Hub, email string, feed Feed) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		Email: email,
		Conn:  conn,
	}

	hub.register <- client

	client.WriteJSON(Event{
		Type:  EventTypeConnected,
		Email: email,
	})

	if feed != nil {
		feed.SetOnUpdate(func() {
			client.WriteJSON(Event{
				Type:  EventTypeFeed,
				Email: email,
				Data: FeedSnapshot{
					Unread:        feed.UnreadCount(),
					Notifications: feed.Visible(),
				},
			})
		})
		// Not the request context: that dies when this handler returns,
		// the feed must live until the socket closes.
		feed.Start(context.Background())
	}

	// Drain inbound frames until the peer goes away; the portal only
	// pushes, it never reads commands.
	go func() {
		defer func() {
			if feed != nil {
				feed.Stop()
			}
			hub.unregister <- client
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
