package http

import (
	"log/slog"
	"net/http"
	"strings"

	gorilla "github.com/gorilla/websocket"

	"csvhealth/internal/infrastructure"
	"csvhealth/internal/websocket"
)

// WebSocketHandler upgrades connections and registers them on the hub
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a handler that only accepts the configured origins
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string, readBufferSize, writeBufferSize int, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebSocketHandler{
		hub:    hub,
		logger: logger.With(slog.String("component", "ws_handler")),
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	websocket.ServeWS(h.hub, conn, infrastructure.GetTraceID(r.Context()), h.logger)
}
