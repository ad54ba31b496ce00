package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendQueueSize buffers roughly two seconds of frames at 30fps.
	sendQueueSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The graph view is same-origin in production and localhost in
	// development; origin enforcement belongs to the fronting proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber to an investigation's frame stream.
// The stream is outbound-only; interaction flows through the REST API.
type Client struct {
	hub             *Hub
	conn            *websocket.Conn
	investigationID string
	send            chan []byte
	logger          *zap.Logger
}

// ServeWS upgrades an HTTP request into a frame stream subscription.
func ServeWS(hub *Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		investigationID := r.URL.Query().Get("investigation")
		if investigationID == "" {
			http.Error(w, "investigation query parameter is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("Websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			hub:             hub,
			conn:            conn,
			investigationID: investigationID,
			send:            make(chan []byte, sendQueueSize),
			logger:          logger,
		}
		hub.register(client)

		go client.writePump()
		go client.readPump()
	}
}

// readPump drains inbound frames so pings and close frames are processed.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump flushes the send queue to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
