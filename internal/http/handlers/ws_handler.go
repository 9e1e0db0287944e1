package handlers

import (
	"context"
	"encoding/json"

	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/session"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHub pushes session change events to connected clients so a
// sign-out or expiry elsewhere revokes the UI immediately. Each connection
// holds one store subscription, released when the socket closes.
type SessionHub struct {
	store *session.Store
	log   *zap.Logger
}

func NewSessionHub(store *session.Store, log *zap.Logger) *SessionHub {
	return &SessionHub{store: store, log: log}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *SessionHub) HandleWS(conn *websocket.Conn) {
	defer conn.Close()

	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		return
	}

	sess, err := h.store.Current(context.Background(), tokenStr)
	if err != nil || sess == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		return
	}

	userID := sess.UserID
	outbound := make(chan models.SessionChange, 8)

	unsubscribe := h.store.Subscribe(func(change models.SessionChange) {
		if change.UserID != userID {
			return
		}
		select {
		case outbound <- change:
		default:
			// slow consumer, drop rather than block the dispatcher
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Read loop: drains pings and detects disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case change := <-outbound:
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
