package collection

import (
	"slices"
	"sync/atomic"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

type closer interface{ Close() }

// View is the read handle at the end of a pipeline.
type View[T any] struct {
	name   string
	sc     *scope
	stage  Stage[T]
	subs   subscribers[change.Event[T]]
	owned  []closer
	detach func()
	closed atomic.Bool
}

// NewView creates a view over stage.
func NewView[T any](stage Stage[T], name string) (*View[T], error) {
	if stage == nil {
		return nil, errors.InvalidInput("stage", "stage is required")
	}
	if name == "" {
		name = "view"
	}
	v := &View[T]{name: name, sc: stage.scope(), stage: stage}
	v.sc.write(func() {
		v.detach = stage.attach(v.onEvent)
	})
	v.sc.log.Debug("view created", logger.Fields(logger.FieldView, name))
	return v, nil
}

// Name returns the name given at creation.
func (v *View[T]) Name() string { return v.name }

// Len returns the number of items.
func (v *View[T]) Len() int { return v.stage.Len() }

// Snapshot returns a copy of the current items. It never aliases the
// pipeline's state.
func (v *View[T]) Snapshot() []T { return v.stage.Snapshot() }

// Subscribe registers fn for every later event.
func (v *View[T]) Subscribe(fn Handler[change.Event[T]]) *Subscription {
	var sub *Subscription
	v.sc.write(func() { sub = v.subs.add(fn) })
	return sub
}

// Watch registers fn and returns the snapshot it starts from: replaying
// the events fn receives against the snapshot reproduces the view.
func (v *View[T]) Watch(fn Handler[change.Event[T]]) ([]T, *Subscription) {
	var (
		snap []T
		sub  *Subscription
	)
	v.sc.write(func() {
		snap = v.stage.items()
		sub = v.subs.add(fn)
	})
	return snap, sub
}

// Subscribers returns the number of registered handlers.
func (v *View[T]) Subscribers() int { return v.subs.len() }

// Close detaches the view from the pipeline and drops its subscribers.
// Stages created for the view by CreateView are closed too. Events still
// queued for delivery are discarded. Closing twice is a no-op.
func (v *View[T]) Close() {
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

func (v *View[T]) onEvent(ev change.Event[T]) {
	list := v.subs.snapshot()
	v.sc.enqueue(func() {
		if v.closed.Load() {
			return
		}
		deliver(v.sc, v.name, list, ev, cloneEvent[T])
	})
}

// cloneEvent copies the payload a handler could modify.
func cloneEvent[T any](ev change.Event[T]) change.Event[T] {
	if ev.Kind == change.Reset {
		ev.Items = slices.Clone(ev.Items)
	}
	return ev
}
