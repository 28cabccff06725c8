// Package websocket pushes workspace changes to connected browsers.
//
// A single hub goroutine owns registration, unregistration and broadcast.
// Each client has a read pump, which only detects disconnects, and a write
// pump that drains the client's send buffer and pings on a ticker. A client
// whose buffer is full is dropped rather than slowing the broadcast.
package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/uiforge/internal/logging"
)

const (
	sendBuffer      = 64
	readTimeout     = 60 * time.Second
	writeTimeout    = 10 * time.Second
	pingInterval    = 54 * time.Second
	maxConnsPerIP   = 20
	broadcastBuffer = 256
)

// Hub manages websocket clients and fans messages out to them.
type Hub struct {
	clients map[*websocket.Conn]*client
	perIP   map[string]int
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *client
	unregister chan *websocket.Conn

	origins OriginValidator
	logger  logging.Logger
	now     func() time.Time

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	done         chan struct{}
}

// NewHub starts a hub. origins is required.
func NewHub(origins OriginValidator, logger logging.Logger) *Hub {
	if origins == nil {
		panic("websocket: origin validator cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[*websocket.Conn]*client),
		perIP:      make(map[string]int),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *client, 32),
		unregister: make(chan *websocket.Conn, 32),
		origins:    origins,
		logger:     logger.WithComponent("websocket"),
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go h.run()

	return h
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	origin := r.Header.Get("Origin")
	if !h.origins.IsAllowedOrigin(origin) {
		h.logger.Warn(r.Context(), nil, "Websocket connection rejected", "origin", origin, "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ip := clientIP(r)
	if !h.reserve(ip) {
		h.logger.Warn(r.Context(), nil, "Websocket connection limit reached", "remote", ip)
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	// Origin has been checked above.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.release(ip)
		h.logger.Warn(r.Context(), err, "Websocket upgrade failed", "remote", ip)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), ip: ip}
	select {
	case h.register <- c:
	case <-h.ctx.Done():
		h.release(ip)
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go h.serveClient(c)
}

// clientIP keys connections by host. Proxy headers are not read here; the
// server's RealIP middleware rewrites RemoteAddr before the hub sees it.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}

// reserve takes one of ip's connection slots. The slot is held until the
// client is removed or release is called.
func (h *Hub) reserve(ip string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.perIP[ip] >= maxConnsPerIP {
		return false
	}
	h.perIP[ip]++

	return true
}

func (h *Hub) release(ip string) {
	h.mu.Lock()
	h.releaseLocked(ip)
	h.mu.Unlock()
}

func (h *Hub) releaseLocked(ip string) {
	if h.perIP[ip]--; h.perIP[ip] <= 0 {
		delete(h.perIP, ip)
	}
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.conn] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(h.ctx, "Websocket client connected", "clients", n)

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			h.fanOut(msg)

		case <-h.ctx.Done():
			h.mu.Lock()
			for conn, c := range h.clients {
				close(c.send)
				_ = conn.Close(websocket.StatusGoingAway, "server shutdown")
			}
			h.clients = make(map[*websocket.Conn]*client)
			h.perIP = make(map[string]int)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(c.send)
		h.releaseLocked(c.ip)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Debug(h.ctx, "Websocket client disconnected", "clients", n)
	}
}

func (h *Hub) fanOut(msg []byte) {
	h.mu.RLock()
	var slow []*websocket.Conn
	for conn, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		h.remove(conn)
	}
}

func (h *Hub) serveClient(c *client) {
	go h.writePump(c)
	h.readPump(c)

	select {
	case h.unregister <- c.conn:
	case <-h.ctx.Done():
	}
}

// readPump discards inbound frames; browsers only listen.
func (h *Hub) readPump(c *client) {
	for {
		ctx, cancel := context.WithTimeout(h.ctx, readTimeout)
		_, _, err := c.conn.Read(ctx)
		cancel()
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && h.ctx.Err() == nil {
				h.logger.Debug(h.ctx, "Websocket read ended", "error", err.Error())
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// Broadcast queues a message for every connected client. payload is
// marshaled to JSON; nil sends no payload. Messages are dropped when the
// hub is shut down or its queue is full.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	msg := Message{Type: msgType, Timestamp: h.now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			h.logger.Error(h.ctx, err, "Failed to marshal broadcast payload", "type", msgType)
			return
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to marshal broadcast message", "type", msgType)
		return
	}

	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn(h.ctx, nil, "Broadcast queue full, dropping message", "type", msgType)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Shutdown closes every connection and stops the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(h.cancel)

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
