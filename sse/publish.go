package sse

import (
	"slices"
	"sync"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/collection"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

// Publisher streams one view to the clients of a topic. It mirrors the
// view so that late clients can be primed with a snapshot that lines up
// with the change frames they receive afterwards.
type Publisher struct {
	topic string
	hub   *Hub

	mu    sync.Mutex
	seq   uint64
	state func() any
	sub   *collection.Subscription
}

// PublishView subscribes to v and broadcasts its changes to topic.
func PublishView[T any](hub *Hub, topic string, v *collection.View[T]) *Publisher {
	p := &Publisher{topic: topic, hub: hub}
	var mirror []T

	p.mu.Lock()
	defer p.mu.Unlock()
	snap, sub := v.Watch(func(ev change.Event[T]) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		next, err := change.Apply(mirror, ev)
		if err != nil {
			return err
		}
		mirror = next
		return p.broadcast(itemMessage(topic, ev))
	})
	mirror = snap
	p.state = func() any { return slices.Clone(mirror) }
	p.sub = sub
	return p
}

// PublishGroups subscribes to a grouped view and broadcasts its changes to
// topic.
func PublishGroups[T any, K comparable](hub *Hub, topic string, v *collection.GroupedView[T, K]) *Publisher {
	p := &Publisher{topic: topic, hub: hub}
	var mirror []change.Group[K, T]

	p.mu.Lock()
	defer p.mu.Unlock()
	snap, sub := v.Watch(func(ev change.GroupEvent[K, T]) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		next, err := change.ApplyGroup(mirror, ev)
		if err != nil {
			return err
		}
		mirror = next
		return p.broadcast(groupMessage(topic, ev))
	})
	mirror = snap
	p.state = func() any { return change.CloneGroups(mirror) }
	p.sub = sub
	return p
}

// Topic returns the topic the publisher broadcasts to.
func (p *Publisher) Topic() string { return p.topic }

// Attach registers c with the hub and queues a snapshot frame for it. No
// change frame can be broadcast between the snapshot and the registration.
func (p *Publisher) Attach(c *Client) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := encode(EventSnapshot, p.seq, SnapshotMessage{Topic: p.topic, Items: p.state()})
	if err != nil {
		return errors.Internal(err).WithDetail("topic", p.topic)
	}
	if !p.hub.Register(c) {
		return errors.ServiceUnavailable("sse hub")
	}
	c.Send(f)
	return nil
}

// Detach unregisters c.
func (p *Publisher) Detach(c *Client) { p.hub.Unregister(c) }

// Close stops following the view. Connected clients stay registered.
func (p *Publisher) Close() { p.sub.Unsubscribe() }

func (p *Publisher) broadcast(m ChangeMessage) error {
	p.seq++
	f, err := encode(EventChange, p.seq, m)
	if err != nil {
		return errors.Internal(err).WithDetail("topic", p.topic)
	}
	n := p.hub.Broadcast(p.topic, f)
	logger.Debug("change broadcast", logger.Fields("topic", p.topic, "kind", m.Kind, "clients", n))
	return nil
}
