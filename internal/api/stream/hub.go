package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/predictarena/internal/store"
	"github.com/wonny/predictarena/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// 느린 클라이언트 버퍼; 가득 차면 연결을 끊는다
	clientBuffer = 16
)

// Event is one published document
type Event struct {
	Path     string          `json:"path"`
	Document json.RawMessage `json:"document"`
	SentAt   time.Time       `json:"sent_at"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans published documents out to websocket subscribers
// ⭐ SSOT: 실시간 문서 스트림은 이 허브에서만
type Hub struct {
	upgrader websocket.Upgrader
	clients  map[*client]struct{}
	mu       sync.RWMutex
	logger   *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		logger:  log,
	}
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a document; matches store.PublishFunc
func (h *Hub) Publish(key store.Key, body []byte) {
	msg, err := json.Marshal(Event{Path: key.Path(), Document: body, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.WithError(err).Warn("Failed to encode stream event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// 버퍼 초과: 구독 해제
			h.removeLocked(c)
		}
	}
}

// ServeHTTP upgrades the request and streams events until disconnect
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("clients", h.Clients()).Debug("Stream subscriber connected")

	ctx, cancel := context.WithCancel(r.Context())
	go h.writeLoop(ctx, c)
	h.readLoop(c)
	cancel()

	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readLoop discards client messages and keeps the pong deadline fresh
func (h *Hub) readLoop(c *client) {
	defer c.conn.Close()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Debug("Stream read ended")
			}
			return
		}
	}
}

// writeLoop sends queued events and periodic pings
func (h *Hub) writeLoop(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				h.logger.WithError(err).Debug("Failed to send ping")
				_ = c.conn.Close()
				return
			}
		}
	}
}
