package ws

import (
	"net/http"
	"strings"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler; пустой allowedOrigins разрешает любой origin
func NewWebSocketHandler(manager *WebSocketManager, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &WebSocketHandler{
		Manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// ServeWS - маршрут /ws за AuthMiddleware (токен в заголовке или ?token=)
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "WebSocket upgrade failed", err)
		return
	}

	client := &Client{
		ID:      userID,
		Conn:    conn,
		Send:    make(chan any, 256),
		Manager: h.Manager,
	}
	if !h.Manager.Register(client) {
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}
