package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/liveview/component"
)

// Component owns a Hub and the publishers streaming into it.
type Component struct {
	hub  *Hub
	path string

	mu         sync.Mutex
	publishers map[string]*Publisher
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component with a fresh Hub. path is the route
// prefix the topics are served under and is only used for reporting.
func NewComponent(path string) *Component {
	return &Component{
		hub:        NewHub(),
		path:       path,
		publishers: make(map[string]*Publisher),
	}
}

// Hub returns the underlying Hub.
func (c *Component) Hub() *Hub { return c.hub }

// Add registers p under its topic. A second publisher for the same topic
// replaces and closes the first.
func (c *Component) Add(p *Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.publishers[p.Topic()]; ok {
		old.Close()
	}
	c.publishers[p.Topic()] = p
}

// Publisher returns the publisher for topic.
func (c *Component) Publisher(topic string) (*Publisher, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.publishers[topic]
	return p, ok
}

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start is a no-op; the hub is ready once created.
func (c *Component) Start(_ context.Context) error { return nil }

// Stop closes every publisher and disconnects all clients.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, p := range c.publishers {
		p.Close()
		delete(c.publishers, topic)
	}
	c.hub.Stop()
	return nil
}

// Health returns the health status of the SSE hub.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

// Describe returns infrastructure summary info.
func (c *Component) Describe() component.Description {
	c.mu.Lock()
	defer c.mu.Unlock()
	return component.Description{
		Name:    "SSE Hub",
		Type:    "sse",
		Details: fmt.Sprintf("path=%s topics=%d", c.path, len(c.publishers)),
	}
}
