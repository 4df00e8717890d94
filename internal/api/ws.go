package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// streamEvents upgrades the connection and relays broadcaster events
// until the client disconnects. The stream is write-only; inbound
// messages are drained solely to detect the close.
func (h *Handler) streamEvents(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   gin.H{"code": "stream_unavailable", "message": "event stream not configured"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	id, events := h.broadcaster.Subscribe()
	slog.Info("websocket subscriber connected", "id", id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.broadcaster.Unsubscribe(id)
		conn.Close()
		slog.Info("websocket subscriber disconnected", "id", id)
	}()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				// Broadcaster closed, server is shutting down
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}
