package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// Subscriber opens a user's live notification channel.
// *realtime.RedisBroadcaster satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, userID uint) (*redis.PubSub, error)
}

// StreamHandler upgrades to a websocket and relays the caller's live
// notification payloads.
type StreamHandler struct {
	subscriber Subscriber
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

// NewStreamHandler creates a StreamHandler. A nil subscriber answers 503.
func NewStreamHandler(subscriber Subscriber, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// RegisterStreamRoutes registers the websocket endpoint
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/notifications/stream", h.Stream)
}

// Stream relays every payload published for the caller until either side hangs up.
func (h *StreamHandler) Stream(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if h.subscriber == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Live notifications are not available")
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub, err := h.subscriber.Subscribe(ctx, userID)
	if err != nil {
		return err
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warn("Websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil
	}
	defer conn.Close()

	// The client only sends control frames; reading keeps pongs flowing and
	// notices when it goes away.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.log.Debug("Notification stream opened", zap.Uint("user_id", userID))
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.log.Debug("Notification stream closed", zap.Uint("user_id", userID), zap.Error(err))
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
