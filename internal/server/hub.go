package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/guardiandrive/guardiand/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient is one connected websocket consumer. Outbound messages queue
// in send; a client that cannot drain its queue is disconnected rather
// than allowed to stall the hub.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans sweep events out to connected websocket clients.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	mu         sync.RWMutex

	sendBuffer   int
	writeTimeout time.Duration
	pingInterval time.Duration

	done chan struct{}
}

// NewHub creates a websocket hub. Zero values select the configured
// defaults.
func NewHub(sendBuffer int, writeTimeout, pingInterval time.Duration) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = config.DefaultWSSendBufferSize
	}
	if writeTimeout <= 0 {
		writeTimeout = config.DefaultWSWriteTimeout
	}
	if pingInterval <= 0 {
		pingInterval = config.DefaultWSPingInterval
	}

	return &Hub{
		clients:      make(map[*wsClient]bool),
		broadcast:    make(chan []byte),
		register:     make(chan *wsClient),
		unregister:   make(chan *wsClient),
		sendBuffer:   sendBuffer,
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		done:         make(chan struct{}),
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Info("websocket client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Info("websocket client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects all clients and ends the Run loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handle upgrades the request and serves the connection until the
// client disconnects.
func (h *Hub) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &wsClient{
			conn: conn,
			send: make(chan []byte, h.sendBuffer),
		}

		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.writePump(h)

		defer func() {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
		}()

		// Inbound traffic is control frames only; reads exist to
		// detect disconnects and service pong handlers.
		pongWait := 2 * h.pingInterval
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNoStatusReceived) {
					log.Warn("websocket read error", "error", err)
				}
				break
			}
		}
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings. It owns all writes to the connection.
func (c *wsClient) writePump(h *Hub) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
