package collection

import (
	"fmt"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/orderstat"
)

type member[T any, K comparable] struct {
	item T
	key  K
	up   *orderstat.Node[*member[T, K]]
	node *orderstat.Node[*member[T, K]]
}

type bucket[T any, K comparable] struct {
	key     K
	members *orderstat.Tree[*member[T, K]]
	node    *orderstat.Node[*bucket[T, K]]
}

// Grouping partitions the upstream items by key. Groups appear in the
// order their keys were first seen and disappear with their last member.
// Members keep upstream order.
type Grouping[T any, K comparable] struct {
	sc       *scope
	keyFn    func(T) K
	upstream *orderstat.Tree[*member[T, K]]
	groups   map[K]*bucket[T, K]
	order    *orderstat.Tree[*bucket[T, K]]
	out      change.Notifier[change.GroupEvent[K, T]]
	detach   func()
}

// NewGrouping attaches a grouping stage to upstream.
func NewGrouping[T any, K comparable](upstream Stage[T], keyFn func(T) K) (*Grouping[T, K], error) {
	if upstream == nil {
		return nil, errors.InvalidInput("upstream", "upstream stage is required")
	}
	if keyFn == nil {
		return nil, errors.InvalidInput("key", "group key function is required")
	}
	g := &Grouping[T, K]{
		sc:       upstream.scope(),
		keyFn:    keyFn,
		upstream: orderstat.New[*member[T, K]](),
		groups:   make(map[K]*bucket[T, K]),
		order:    orderstat.New[*bucket[T, K]](),
	}
	g.sc.write(func() {
		g.load(upstream.items())
		g.detach = upstream.attach(g.handle)
	})
	g.sc.flush()
	return g, nil
}

// Close detaches the grouping from its upstream.
func (g *Grouping[T, K]) Close() {
	g.sc.write(g.detach)
}

// Len returns the number of groups.
func (g *Grouping[T, K]) Len() int {
	var n int
	g.sc.read(func() { n = g.order.Len() })
	return n
}

// Snapshot returns a copy of the groups.
func (g *Grouping[T, K]) Snapshot() []change.Group[K, T] {
	var out []change.Group[K, T]
	g.sc.read(func() { out = g.snapshot() })
	return out
}

func (g *Grouping[T, K]) handle(ev change.Event[T]) {
	switch ev.Kind {
	case change.Added:
		m := &member[T, K]{item: ev.Item, key: g.key(ev.Item)}
		m.up = g.upstream.InsertAt(ev.Index, m, false)
		g.add(m)

	case change.Removed:
		n := g.upstream.At(ev.Index)
		g.remove(n.Value)
		g.upstream.Delete(n)

	case change.Replaced:
		m := g.upstream.At(ev.Index).Value
		key := g.keyFn(ev.Item)
		if key == m.key {
			b := g.groups[m.key]
			old := m.item
			m.item = ev.Item
			g.emitItem(b, change.ReplacedAt(old, m.item, b.members.Rank(m.node)))
			return
		}
		g.remove(m)
		m.item, m.key = ev.Item, key
		g.add(m)

	case change.Moved:
		n := g.upstream.At(ev.OldIndex)
		m := n.Value
		if g.sc.checks {
			g.checkKey(m)
		}
		b := g.groups[m.key]
		from := b.members.Rank(m.node)
		g.upstream.Delete(n)
		m.up = g.upstream.InsertAt(ev.Index, m, false)
		b.members.Delete(m.node)
		to := g.localRank(b, m)
		m.node = b.members.InsertAt(to, m, false)
		if to != from {
			g.emitItem(b, change.MovedTo(m.item, from, to))
		}

	case change.Reset:
		g.load(ev.Items)
		g.emit(change.GroupEvent[K, T]{Kind: change.GroupsReset, Groups: g.snapshot()})
		g.sc.log.Debug("grouping reset", logger.Fields(logger.FieldStage, "group", logger.FieldCount, g.order.Len()))
	}
}

// key computes the key of a new item. With checks enabled the key
// function is asked twice.
func (g *Grouping[T, K]) key(item T) K {
	k := g.keyFn(item)
	if g.sc.checks {
		if again := g.keyFn(item); again != k {
			g.violation(item, k, again)
		}
	}
	return k
}

// checkKey verifies that an item that has not changed still maps to the
// key it is grouped under.
func (g *Grouping[T, K]) checkKey(m *member[T, K]) {
	if k := g.keyFn(m.item); k != m.key {
		g.violation(m.item, m.key, k)
	}
}

func (g *Grouping[T, K]) violation(item T, was, now K) {
	g.sc.raise(errors.NonDeterministic("group key",
		fmt.Sprintf("key of %v changed from %v to %v without a change notification", item, was, now)).
		WithDetail(logger.FieldStage, "group"))
}

// add places m, already in the upstream tree, into its group, creating the
// group when needed.
func (g *Grouping[T, K]) add(m *member[T, K]) {
	b, ok := g.groups[m.key]
	if !ok {
		b = &bucket[T, K]{key: m.key, members: orderstat.New[*member[T, K]]()}
		b.node = g.order.Append(b, false)
		g.groups[m.key] = b
		g.emit(change.GroupEvent[K, T]{Kind: change.GroupAdded, Key: b.key, GroupIndex: g.order.Rank(b.node)})
	}
	pos := g.localRank(b, m)
	m.node = b.members.InsertAt(pos, m, false)
	g.emitItem(b, change.AddedAt(m.item, pos))
}

// remove takes m out of its group, dropping the group when it empties.
func (g *Grouping[T, K]) remove(m *member[T, K]) {
	b := g.groups[m.key]
	pos := b.members.Rank(m.node)
	b.members.Delete(m.node)
	m.node = nil
	g.emitItem(b, change.RemovedAt(m.item, pos))
	if b.members.Len() > 0 {
		return
	}
	gi := g.order.Rank(b.node)
	g.order.Delete(b.node)
	delete(g.groups, b.key)
	g.emit(change.GroupEvent[K, T]{Kind: change.GroupRemoved, Key: b.key, GroupIndex: gi})
}

// localRank is the position m takes among the members of b: the number of
// members before it in upstream order. m must not be in b.
func (g *Grouping[T, K]) localRank(b *bucket[T, K], m *member[T, K]) int {
	r := g.upstream.Rank(m.up)
	return b.members.Search(func(x *member[T, K]) bool { return g.upstream.Rank(x.up) > r })
}

func (g *Grouping[T, K]) load(items []T) {
	g.upstream.Clear()
	g.order.Clear()
	clear(g.groups)
	for _, item := range items {
		m := &member[T, K]{item: item, key: g.key(item)}
		m.up = g.upstream.Append(m, false)
		b, ok := g.groups[m.key]
		if !ok {
			b = &bucket[T, K]{key: m.key, members: orderstat.New[*member[T, K]]()}
			b.node = g.order.Append(b, false)
			g.groups[m.key] = b
		}
		m.node = b.members.Append(m, false)
	}
}

func (g *Grouping[T, K]) snapshot() []change.Group[K, T] {
	out := make([]change.Group[K, T], 0, g.order.Len())
	g.order.Ascend(func(n *orderstat.Node[*bucket[T, K]]) bool {
		b := n.Value
		items := make([]T, 0, b.members.Len())
		b.members.Ascend(func(x *orderstat.Node[*member[T, K]]) bool {
			items = append(items, x.Value.item)
			return true
		})
		out = append(out, change.Group[K, T]{Key: b.key, Items: items})
		return true
	})
	return out
}

func (g *Grouping[T, K]) emitItem(b *bucket[T, K], ev change.Event[T]) {
	g.emit(change.GroupEvent[K, T]{
		Kind:       change.ItemChanged,
		Key:        b.key,
		GroupIndex: g.order.Rank(b.node),
		Change:     ev,
	})
}

func (g *Grouping[T, K]) emit(ev change.GroupEvent[K, T]) {
	kind := ev.Kind.String()
	if ev.Kind == change.ItemChanged {
		kind = ev.Change.Kind.String()
	}
	g.sc.recordEvent("group", kind)
	g.out.Notify(ev)
}

func (g *Grouping[T, K]) attach(l change.Listener[change.GroupEvent[K, T]]) func() {
	return g.out.Attach(l)
}
