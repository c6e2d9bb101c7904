package collection

import (
	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/orderstat"
)

// Filter keeps the upstream items that satisfy a predicate, in upstream
// order.
//
// Every upstream entry is kept in an order-statistics tree, marked when it
// passes, so the filtered position of an entry is its marked rank.
type Filter[T any] struct {
	sc      *scope
	pred    func(T) bool
	entries *orderstat.Tree[T]
	out     change.Notifier[change.Event[T]]
	detach  func()
}

var _ Stage[int] = (*Filter[int])(nil)

// NewFilter attaches a filter stage to upstream.
func NewFilter[T any](upstream Stage[T], pred func(T) bool) (*Filter[T], error) {
	if upstream == nil {
		return nil, errors.InvalidInput("upstream", "upstream stage is required")
	}
	if pred == nil {
		return nil, errors.InvalidInput("predicate", "filter predicate is required")
	}
	f := &Filter[T]{sc: upstream.scope(), pred: pred, entries: orderstat.New[T]()}
	f.sc.write(func() {
		f.load(upstream.items())
		f.detach = upstream.attach(f.handle)
	})
	return f, nil
}

// Refresh re-evaluates the predicate for every entry and emits one Reset.
// Use it when the predicate's own parameters changed.
func (f *Filter[T]) Refresh() error {
	return f.sc.mutate("Filter.Refresh", -1, func() (bool, error) {
		f.load(f.entries.Values())
		f.emit(change.ResetTo(f.entries.MarkedValues()))
		return true, nil
	})
}

// Close detaches the filter from its upstream.
func (f *Filter[T]) Close() {
	f.sc.write(f.detach)
}

// Len returns the number of passing items.
func (f *Filter[T]) Len() int {
	var n int
	f.sc.read(func() { n = f.entries.Marked() })
	return n
}

// Snapshot returns the passing items.
func (f *Filter[T]) Snapshot() []T {
	var out []T
	f.sc.read(func() { out = f.entries.MarkedValues() })
	return out
}

func (f *Filter[T]) handle(ev change.Event[T]) {
	switch ev.Kind {
	case change.Added:
		pass := f.pred(ev.Item)
		n := f.entries.InsertAt(ev.Index, ev.Item, pass)
		if pass {
			f.emit(change.AddedAt(ev.Item, f.entries.MarkedRank(n)))
		}

	case change.Removed:
		n := f.entries.At(ev.Index)
		pos, was := f.entries.MarkedRank(n), n.Marked()
		f.entries.Delete(n)
		if was {
			f.emit(change.RemovedAt(n.Value, pos))
		}

	case change.Replaced:
		n := f.entries.At(ev.Index)
		old, was := n.Value, n.Marked()
		now := f.pred(ev.Item)
		n.Value = ev.Item
		switch {
		case was && now:
			f.emit(change.ReplacedAt(old, ev.Item, f.entries.MarkedRank(n)))
		case was:
			pos := f.entries.MarkedRank(n)
			f.entries.SetMarked(n, false)
			f.emit(change.RemovedAt(old, pos))
		case now:
			f.entries.SetMarked(n, true)
			f.emit(change.AddedAt(ev.Item, f.entries.MarkedRank(n)))
		}

	case change.Moved:
		n := f.entries.At(ev.OldIndex)
		from := f.entries.MarkedRank(n)
		f.entries.Delete(n)
		m := f.entries.InsertAt(ev.Index, n.Value, n.Marked())
		if m.Marked() {
			if to := f.entries.MarkedRank(m); to != from {
				f.emit(change.MovedTo(m.Value, from, to))
			}
		}

	case change.Reset:
		f.load(ev.Items)
		f.emit(change.ResetTo(f.entries.MarkedValues()))
		f.sc.log.Debug("filter reset", logger.Fields(logger.FieldStage, "filter", logger.FieldCount, f.entries.Marked()))
	}
}

func (f *Filter[T]) load(items []T) {
	f.entries.Clear()
	for _, item := range items {
		f.entries.Append(item, f.pred(item))
	}
}

func (f *Filter[T]) emit(ev change.Event[T]) {
	emit(f.sc, "filter", &f.out, ev)
}

func (f *Filter[T]) scope() *scope { return f.sc }

func (f *Filter[T]) items() []T { return f.entries.MarkedValues() }

func (f *Filter[T]) attach(l change.Listener[change.Event[T]]) func() {
	return f.out.Attach(l)
}
