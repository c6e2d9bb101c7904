package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/liveview/logger"
)

// Client is one connected SSE stream.
type Client struct {
	id     string
	topic  string
	frames chan Frame
	once   sync.Once
}

// NewClient creates a client for topic with a random id.
func NewClient(topic string) *Client {
	return &Client{
		id:     uuid.NewString(),
		topic:  topic,
		frames: make(chan Frame, 256),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Topic returns the topic the client listens to.
func (c *Client) Topic() string { return c.topic }

// Frames returns the channel of frames to write.
func (c *Client) Frames() <-chan Frame { return c.frames }

// Send queues f. It returns false when the client is too slow and the
// frame was dropped.
func (c *Client) Send(f Frame) bool {
	select {
	case c.frames <- f:
		return true
	default:
		logger.Warn("sse client too slow, dropping frame", logger.Fields("client_id", c.id, "topic", c.topic))
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.frames) })
}

// Broadcaster sends frames to the clients of a topic.
type Broadcaster interface {
	Broadcast(topic string, f Frame) int
}

// Hub tracks clients by topic.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[string]*Client
	stopped bool
	log     *logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[string]*Client),
		log:    logger.WithComponent("sse"),
	}
}

// Register adds c to its topic. It returns false after Stop.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		c.close()
		return false
	}
	clients := h.topics[c.topic]
	if clients == nil {
		clients = make(map[string]*Client)
		h.topics[c.topic] = clients
	}
	clients[c.id] = c
	h.log.Debug("client registered", logger.Fields("client_id", c.id, "topic", c.topic, "clients", len(clients)))
	return true
}

// Unregister removes c and closes its frame channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients := h.topics[c.topic]; clients != nil {
		delete(clients, c.id)
		if len(clients) == 0 {
			delete(h.topics, c.topic)
		}
	}
	c.close()
	h.log.Debug("client unregistered", logger.Fields("client_id", c.id, "topic", c.topic))
}

// Broadcast queues f on every client of topic and returns how many took
// it.
func (h *Hub) Broadcast(topic string, f Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, c := range h.topics[topic] {
		if c.Send(f) {
			sent++
		}
	}
	return sent
}

// Stop disconnects every client. Later registrations are refused.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for topic, clients := range h.topics {
		for _, c := range clients {
			c.close()
		}
		delete(h.topics, topic)
	}
	h.log.Debug("all clients closed")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.topics {
		n += len(clients)
	}
	return n
}

// Topics returns the number of clients per topic.
func (h *Hub) Topics() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.topics))
	for topic, clients := range h.topics {
		out[topic] = len(clients)
	}
	return out
}
