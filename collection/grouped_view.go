package collection

import (
	"sync/atomic"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

// GroupedView is the read handle at the end of a grouping pipeline.
type GroupedView[T any, K comparable] struct {
	name     string
	sc       *scope
	grouping *Grouping[T, K]
	subs     subscribers[change.GroupEvent[K, T]]
	owned    []closer
	detach   func()
	closed   atomic.Bool
}

// NewGroupedView creates a view over grouping.
func NewGroupedView[T any, K comparable](grouping *Grouping[T, K], name string) (*GroupedView[T, K], error) {
	if grouping == nil {
		return nil, errors.InvalidInput("grouping", "grouping is required")
	}
	if name == "" {
		name = "grouped-view"
	}
	v := &GroupedView[T, K]{name: name, sc: grouping.sc, grouping: grouping}
	v.sc.write(func() {
		v.detach = grouping.attach(v.onEvent)
	})
	v.sc.log.Debug("view created", logger.Fields(logger.FieldView, name, "grouped", true))
	return v, nil
}

// Name returns the name given at creation.
func (v *GroupedView[T, K]) Name() string { return v.name }

// Len returns the number of groups.
func (v *GroupedView[T, K]) Len() int { return v.grouping.Len() }

// Snapshot returns a deep copy of the groups.
func (v *GroupedView[T, K]) Snapshot() []change.Group[K, T] { return v.grouping.Snapshot() }

// Subscribe registers fn for every later event.
func (v *GroupedView[T, K]) Subscribe(fn Handler[change.GroupEvent[K, T]]) *Subscription {
	var sub *Subscription
	v.sc.write(func() { sub = v.subs.add(fn) })
	return sub
}

// Watch registers fn and returns the groups it starts from.
func (v *GroupedView[T, K]) Watch(fn Handler[change.GroupEvent[K, T]]) ([]change.Group[K, T], *Subscription) {
	var (
		snap []change.Group[K, T]
		sub  *Subscription
	)
	v.sc.write(func() {
		snap = v.grouping.snapshot()
		sub = v.subs.add(fn)
	})
	return snap, sub
}

// Subscribers returns the number of registered handlers.
func (v *GroupedView[T, K]) Subscribers() int { return v.subs.len() }

// Close detaches the view and drops its subscribers. Closing twice is a
// no-op.
func (v *GroupedView[T, K]) Close() {
	if !v.closed.CompareAndSwap(false, true) {
		return
	}
	v.sc.write(v.detach)
	for i := len(v.owned) - 1; i >= 0; i-- {
		v.owned[i].Close()
	}
	v.subs.clear()
	v.sc.log.Debug("view closed", logger.Fields(logger.FieldView, v.name))
}

func (v *GroupedView[T, K]) onEvent(ev change.GroupEvent[K, T]) {
	list := v.subs.snapshot()
	v.sc.enqueue(func() {
		if v.closed.Load() {
			return
		}
		deliver(v.sc, v.name, list, ev, cloneGroupEvent[K, T])
	})
}

func cloneGroupEvent[K comparable, T any](ev change.GroupEvent[K, T]) change.GroupEvent[K, T] {
	if ev.Kind == change.GroupsReset {
		ev.Groups = change.CloneGroups(ev.Groups)
	}
	return ev
}
