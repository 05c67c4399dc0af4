package handler

import (
	"net/http"
	"time"

	"github.com/crypto-journal/internal/middleware"
	"github.com/crypto-journal/internal/service"
	"github.com/crypto-journal/internal/stream"
	"github.com/crypto-journal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait   = 10 * time.Second
	streamPingPeriod  = 30 * time.Second
	streamReadTimeout = 90 * time.Second
)

// StreamHandler pushes live statistics to connected dashboards over
// WebSocket. Browsers cannot set headers on WebSocket requests, so the JWT
// is carried in the token query parameter instead.
type StreamHandler struct {
	authService  *service.AuthService
	tradeService *service.TradeService
	hub          *stream.Hub
	upgrader     websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(authService *service.AuthService, tradeService *service.TradeService, hub *stream.Hub) *StreamHandler {
	return &StreamHandler{
		authService:  authService,
		tradeService: tradeService,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is handled at the HTTP layer
			},
		},
	}
}

// Stream upgrades the connection and pushes stats updates until the client
// disconnects
// GET /api/trades/stream?token=...
func (h *StreamHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		middleware.LogError("stream upgrade failed for user %d: %v", userID, err)
		return
	}
	defer conn.Close()

	ch := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(userID, ch)

	// Send a snapshot so the dashboard renders before the first mutation.
	if stats, err := h.tradeService.Stats(c.Request.Context(), userID); err == nil {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(stats); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// RegisterRoutes registers the stream route. Auth happens inside the
// handler, not via the bearer middleware.
func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/trades/stream", h.Stream)
}
