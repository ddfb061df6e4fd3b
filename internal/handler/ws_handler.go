package handler

import (
	"log"
	"net/http"

	"taskboard/internal/hub"
	"taskboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	sessions Sessions
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler принимает список разрешенных Origin; пустой список или "*"
// разрешает любой источник
func NewWSHandler(sessions Sessions, h *hub.Hub, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		sessions: sessions,
		hub:      h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Subscribe переводит соединение на websocket и подписывает его на обновления доски
func (h *WSHandler) Subscribe(c *gin.Context) {
	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	topic := session.Topic(s.UserID, s.ProjectID)
	if h.hub.Subscribe(topic, conn) == nil {
		return
	}
	h.hub.Publish(topic, "board", s.Board.Snapshot())
}
