package sse

import (
	"path/filepath"
	"sync"

	"github.com/kbukum/paiflow/logger"
)

// Broadcaster sends data to every client whose id matches a glob pattern
// such as "workflow:abc:*".
type Broadcaster interface {
	BroadcastToPattern(pattern string, data []byte)
}

// Frame is one event queued for a client.
type Frame struct {
	Name string
	Data []byte
}

// Client is a connected subscriber.
type Client struct {
	id       string
	metadata map[string]string
	events   chan Frame
	log      *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		c.metadata[key] = value
	}
}

// WithBuffer sets how many frames may queue before new ones are dropped.
func WithBuffer(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.events = make(chan Frame, n)
		}
	}
}

// NewClient creates a client with a 256-frame buffer.
func NewClient(id string, opts ...ClientOption) *Client {
	c := &Client{
		id:       id,
		metadata: make(map[string]string),
		events:   make(chan Frame, 256),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Metadata returns all client metadata.
func (c *Client) Metadata() map[string]string { return c.metadata }

// Events returns the channel the client's frames arrive on. It is closed
// when the client is unregistered or the hub stops.
func (c *Client) Events() <-chan Frame { return c.events }

// Send queues f. It returns false and drops f when the client is not
// keeping up.
func (c *Client) Send(f Frame) bool {
	select {
	case c.events <- f:
		return true
	default:
		c.log.Warn("client channel full, dropping event", map[string]interface{}{"client_id": c.id})
		return false
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.events)
}

type message struct {
	pattern string
	frame   Frame
}

// Hub tracks subscribers and routes broadcasts to them. All client map
// mutations happen on the Run goroutine.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	log        *logger.Logger
}

// NewHub creates a hub. Call Run to start routing.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        log.WithComponent("sse"),
	}
}

// Run routes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			client.log = h.log
			h.mu.Lock()
			if old, ok := h.clients[client.id]; ok {
				old.Close()
			}
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", map[string]interface{}{"client_id": client.id, "total_clients": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", map[string]interface{}{"client_id": client.id, "total_clients": total})

		case msg := <-h.broadcast:
			h.broadcastWithPattern(msg.pattern, msg.frame)
		}
	}
}

// Stop closes every client and makes Run return. Safe to call multiple
// times.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
	h.log.Debug("all clients closed during shutdown")
}

// Register adds a client. It returns false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToPattern sends data as an unnamed event to all matching
// clients.
func (h *Hub) BroadcastToPattern(pattern string, data []byte) {
	h.Publish(pattern, Frame{Data: data})
}

// Publish sends f to all clients matching pattern. It never blocks on slow
// clients; when the hub queue itself is full the frame is dropped.
func (h *Hub) Publish(pattern string, f Frame) {
	select {
	case h.broadcast <- message{pattern: pattern, frame: f}:
	case <-h.done:
	default:
		h.log.Warn("broadcast queue full, dropping event", map[string]interface{}{"pattern": pattern})
	}
}

func (h *Hub) broadcastWithPattern(pattern string, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matchCount := 0
	for clientID, client := range h.clients {
		matched, err := filepath.Match(pattern, clientID)
		if err != nil {
			h.log.Error("pattern match error", map[string]interface{}{"pattern": pattern, "error": err.Error()})
			return
		}
		if matched && client.Send(f) {
			matchCount++
		}
	}
	h.log.Debug("broadcast sent", map[string]interface{}{
		"pattern": pattern, "match_count": matchCount, "data_size": len(f.Data),
	})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Watched returns the number of distinct workflows that have at least one
// subscriber.
func (h *Hub) Watched() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[string]struct{})
	for id := range h.clients {
		if wf, ok := workflowOf(id); ok {
			seen[wf] = struct{}{}
		}
	}
	return len(seen)
}

// GetClient returns a client by ID, or nil if not found.
func (h *Hub) GetClient(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

var _ Broadcaster = (*Hub)(nil)
