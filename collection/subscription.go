package collection

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

// Handler receives the events of a view. A returned error, like a panic,
// is reported through the source's error handler and does not stop
// delivery to the remaining handlers.
type Handler[E any] func(E) error

// Subscription is the registration of one handler on a view.
type Subscription struct {
	// ID identifies the subscription in logs and failure reports.
	ID uuid.UUID

	active atomic.Bool
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery to the handler, including events already
// queued for it. Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)
		s.cancel()
	})
}

// Active reports whether the handler still receives events.
func (s *Subscription) Active() bool {
	return s.active.Load()
}

type subscriber[E any] struct {
	sub *Subscription
	fn  Handler[E]
}

// subscribers is the ordered handler list of a view.
type subscribers[E any] struct {
	mu   sync.Mutex
	list []*subscriber[E]
}

func (r *subscribers[E]) add(fn Handler[E]) *Subscription {
	if fn == nil {
		panic("collection: nil handler")
	}
	s := &subscriber[E]{sub: &Subscription{ID: uuid.New()}, fn: fn}
	s.sub.active.Store(true)
	s.sub.cancel = func() { r.remove(s) }

	r.mu.Lock()
	r.list = append(r.list, s)
	r.mu.Unlock()
	return s.sub
}

func (r *subscribers[E]) remove(s *subscriber[E]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.list {
		if x == s {
			r.list = append(r.list[:i:i], r.list[i+1:]...)
			return
		}
	}
}

func (r *subscribers[E]) snapshot() []*subscriber[E] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list
}

func (r *subscribers[E]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.list)
}

func (r *subscribers[E]) clear() {
	r.mu.Lock()
	list := r.list
	r.list = nil
	r.mu.Unlock()
	for _, s := range list {
		s.sub.active.Store(false)
	}
}

// deliver calls every still active handler of list with its own copy of
// ev, in registration order, and reports the failures of the round as one
// SubscriberFailure. list is captured when ev is queued, so a handler
// registered after the change that produced ev does not receive it.
func deliver[E any](sc *scope, view string, list []*subscriber[E], ev E, clone func(E) E) {
	if len(list) == 0 {
		return
	}

	start := time.Now()
	var failures []error
	for _, s := range list {
		if !s.sub.active.Load() {
			continue
		}
		if err := call(s, clone(ev)); err != nil {
			failures = append(failures, err)
		}
	}
	elapsed := time.Since(start)
	sc.inst.RecordDelivery(context.Background(), view, elapsed, len(failures))
	if sc.log.Enabled(zerolog.DebugLevel) {
		sc.log.Debug("event delivered", logger.Fields(
			logger.FieldView, view,
			logger.FieldCount, len(list),
			logger.FieldDuration, float64(elapsed.Microseconds())/1000,
		))
	}
	if len(failures) > 0 {
		sc.report(errors.SubscriberFailure(view, failures))
	}
}

func call[E any](s *subscriber[E], ev E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Errorf("subscriber panicked: %v", r)).
				WithDetail("subscription", s.sub.ID.String())
		}
	}()
	return s.fn(ev)
}
