package http

import (
	"log/slog"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"edupulse/internal/infrastructure"
	"edupulse/internal/websocket"
)

// WebSocketHandler upgrades dashboard connections and hands them to the hub.
type WebSocketHandler struct {
	hub      *websocket.Hub
	logger   *slog.Logger
	upgrader gorilla.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger.With(slog.String("component", "websocket_handler")),
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-host dashboard only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		// Upgrade already wrote its own response; just log.
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	websocket.ServeWS(h.hub, conn, traceID, h.logger)
}
