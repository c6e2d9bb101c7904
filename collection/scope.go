package collection

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/observability"
)

// scope is the state shared by a Source and everything built on it: the
// pipeline lock, the reentrancy guard and the delivery queue.
//
// Single-threaded, busy marks a running mutation and its delivery round.
// Synchronized, mu guards the pipeline while a mutation propagates and
// deliver serializes delivery rounds; deliverer holds the id of the
// goroutine running handlers so a mutation from a handler is refused
// instead of waiting on its own round.
type scope struct {
	name         string
	log          *logger.Logger
	inst         *observability.Instruments
	onError      func(error)
	synchronized bool
	checks       bool
	tieBreak     TieBreak

	mu   sync.RWMutex
	busy bool
	ctx  context.Context

	qmu       sync.Mutex
	queue     []func()
	deliver   sync.Mutex
	deliverer atomic.Uint64
}

func newScope(o *options) *scope {
	sc := &scope{
		name:         o.name,
		log:          o.log,
		inst:         o.inst,
		onError:      o.onError,
		synchronized: o.synchronized,
		checks:       o.checks,
		tieBreak:     o.tieBreak,
		ctx:          context.Background(),
	}
	if sc.name == "" {
		sc.name = "source"
	}
	if sc.log == nil {
		sc.log = logger.WithComponent("liveview")
	}
	sc.log = sc.log.WithFields(logger.Fields("source", sc.name))
	if sc.onError == nil {
		sc.onError = sc.logError
	}
	if sc.tieBreak == TieBreakDefault {
		sc.tieBreak = TieBreakStable
	}
	return sc
}

// mutate runs apply as one mutation: it takes the pipeline for writing,
// lets apply change the source and propagate, releases the pipeline and
// then delivers the queued view events. It returns once its own events
// have reached every handler. apply reports whether anything changed.
func (sc *scope) mutate(op string, index int, apply func() (bool, error)) (err error) {
	ctx, span := sc.inst.StartMutation(context.Background(), op, index)
	applied := false
	defer func() { sc.inst.EndMutation(ctx, span, op, err, applied) }()

	if err = sc.enter(op); err != nil {
		return err
	}
	if !sc.synchronized {
		defer func() { sc.busy = false }()
	}
	func() {
		defer sc.leave()
		sc.ctx = ctx
		defer func() { sc.ctx = context.Background() }()
		applied, err = apply()
	}()
	sc.flush()
	return err
}

func (sc *scope) enter(op string) error {
	if sc.synchronized {
		if sc.delivering() {
			return sc.reject(op)
		}
		sc.mu.Lock()
		return nil
	}
	if sc.busy {
		return sc.reject(op)
	}
	sc.busy = true
	return nil
}

func (sc *scope) reject(op string) error {
	sc.log.Warn("mutation rejected while notifying", logger.Fields(logger.FieldOperation, op))
	return errors.ReentrantMutation(op)
}

// delivering reports whether the calling goroutine is running handlers.
func (sc *scope) delivering() bool {
	d := sc.deliverer.Load()
	return d != 0 && d == goid()
}

func (sc *scope) leave() {
	if sc.synchronized {
		sc.mu.Unlock()
	}
}

// write runs fn with the pipeline held for writing, outside of any
// mutation. It is used to attach and detach stages and views.
func (sc *scope) write(fn func()) {
	if sc.synchronized {
		sc.mu.Lock()
		defer sc.mu.Unlock()
	}
	fn()
}

// read runs fn with the pipeline held for reading.
func (sc *scope) read(fn func()) {
	if sc.synchronized {
		sc.mu.RLock()
		defer sc.mu.RUnlock()
	}
	fn()
}

// enqueue schedules a view delivery. Called while propagating.
func (sc *scope) enqueue(d func()) {
	sc.qmu.Lock()
	sc.queue = append(sc.queue, d)
	sc.qmu.Unlock()
}

// flush runs queued deliveries in order until the queue is empty. A flush
// called from inside a delivery round returns at once: the running round
// picks up what was queued.
//
// Synchronized, flush waits for a round running on another goroutine to
// finish and then drains the queue itself, so everything queued before
// the call has been delivered when it returns.
func (sc *scope) flush() {
	if !sc.synchronized {
		if !sc.deliver.TryLock() {
			return
		}
		busy := sc.busy
		sc.busy = true
		sc.drain()
		sc.busy = busy
		sc.deliver.Unlock()
		return
	}
	if sc.delivering() {
		return
	}
	sc.deliver.Lock()
	sc.deliverer.Store(goid())
	defer func() {
		sc.deliverer.Store(0)
		sc.deliver.Unlock()
	}()
	sc.drain()
}

func (sc *scope) drain() {
	for {
		sc.qmu.Lock()
		batch := sc.queue
		sc.queue = nil
		sc.qmu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, d := range batch {
			d()
		}
	}
}

// report passes an out-of-band error to the error handler. It is called
// from delivery, never with the pipeline held.
func (sc *scope) report(err error) {
	sc.onError(err)
}

// raise queues err for the error handler. Stages call it while
// propagating; the handler runs with the other deliveries, after the
// pipeline is released.
func (sc *scope) raise(err error) {
	sc.enqueue(func() { sc.report(err) })
}

func (sc *scope) logError(err error) {
	fields := logger.Fields(logger.FieldError, err.Error())
	if appErr, ok := errors.AsAppError(err); ok {
		fields["code"] = string(appErr.Code)
		for k, v := range appErr.Details {
			fields[k] = v
		}
		if appErr.Code == errors.ErrCodeNonDeterministic {
			sc.log.Error("callback contract violated", fields)
			return
		}
	}
	sc.log.Warn("subscriber failure", fields)
}

// recordEvent counts an event emitted by stage.
func (sc *scope) recordEvent(stage string, kind string) {
	sc.inst.RecordEvent(sc.ctx, stage, kind)
}

// emit counts ev and hands it to the stage's listeners.
func emit[T any](sc *scope, stage string, out *change.Notifier[change.Event[T]], ev change.Event[T]) {
	sc.recordEvent(stage, ev.Kind.String())
	out.Notify(ev)
}
