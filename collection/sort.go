package collection

import (
	"fmt"
	"slices"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/orderstat"
)

// SortOption configures a Sort stage.
type SortOption func(*sortConfig)

type sortConfig struct {
	descending bool
	tieBreak   TieBreak
}

// Descending reverses the comparator.
func Descending() SortOption {
	return func(c *sortConfig) { c.descending = true }
}

// WithSortTieBreak sets the order of equal items.
func WithSortTieBreak(tb TieBreak) SortOption {
	return func(c *sortConfig) { c.tieBreak = tb }
}

type sortEntry[T any] struct {
	item T
	seq  int64
	node *orderstat.Node[*sortEntry[T]]
}

// Sort orders the upstream items by a comparator. Items that compare equal
// are ordered by arrival.
//
// The stage keeps two trees over the same entries: one in upstream order
// for positional lookup of incoming events, one in output order keyed by
// (comparator, arrival sequence).
type Sort[T any] struct {
	sc       *scope
	cmp      func(a, b T) int
	tieBreak TieBreak
	upstream *orderstat.Tree[*sortEntry[T]]
	sorted   *orderstat.Tree[*sortEntry[T]]
	seq      int64
	violated bool
	out      change.Notifier[change.Event[T]]
	detach   func()
}

var _ Stage[int] = (*Sort[int])(nil)

// NewSort attaches a sort stage to upstream. cmp must be a total order.
func NewSort[T any](upstream Stage[T], cmp func(a, b T) int, opts ...SortOption) (*Sort[T], error) {
	if upstream == nil {
		return nil, errors.InvalidInput("upstream", "upstream stage is required")
	}
	if cmp == nil {
		return nil, errors.InvalidInput("compare", "sort comparator is required")
	}
	cfg := sortConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch cfg.tieBreak {
	case TieBreakDefault, TieBreakStable, TieBreakLatestFirst:
	default:
		return nil, errors.InvalidInput("tie_break", fmt.Sprintf("unknown tie-break %d", int(cfg.tieBreak)))
	}

	s := &Sort[T]{
		sc:       upstream.scope(),
		cmp:      cmp,
		tieBreak: cfg.tieBreak,
		upstream: orderstat.New[*sortEntry[T]](),
		sorted:   orderstat.New[*sortEntry[T]](),
	}
	if cfg.descending {
		s.cmp = func(a, b T) int { return cmp(b, a) }
	}
	if s.tieBreak == TieBreakDefault {
		s.tieBreak = s.sc.tieBreak
	}
	s.sc.write(func() {
		s.load(upstream.items())
		s.detach = upstream.attach(s.handle)
	})
	s.sc.flush()
	return s, nil
}

// Close detaches the sort from its upstream.
func (s *Sort[T]) Close() {
	s.sc.write(s.detach)
}

// Len returns the number of items.
func (s *Sort[T]) Len() int {
	var n int
	s.sc.read(func() { n = s.sorted.Len() })
	return n
}

// Snapshot returns the items in sorted order.
func (s *Sort[T]) Snapshot() []T {
	var out []T
	s.sc.read(func() { out = s.items() })
	return out
}

func (s *Sort[T]) handle(ev change.Event[T]) {
	switch ev.Kind {
	case change.Added:
		e := s.newEntry(ev.Item)
		s.upstream.InsertAt(ev.Index, e, false)
		r := s.insert(e)
		s.emit(change.AddedAt(e.item, r))

	case change.Removed:
		n := s.upstream.At(ev.Index)
		e := n.Value
		s.upstream.Delete(n)
		r := s.sorted.Rank(e.node)
		s.sorted.Delete(e.node)
		s.emit(change.RemovedAt(e.item, r))

	case change.Replaced:
		e := s.upstream.At(ev.Index).Value
		old := e.item
		r := s.sorted.Rank(e.node)
		e.item = ev.Item
		if s.fits(e, r) {
			s.emit(change.ReplacedAt(old, e.item, r))
			return
		}
		s.sorted.Delete(e.node)
		s.emit(change.RemovedAt(old, r))
		s.emit(change.AddedAt(e.item, s.insert(e)))

	case change.Moved:
		n := s.upstream.At(ev.OldIndex)
		s.upstream.Delete(n)
		s.upstream.InsertAt(ev.Index, n.Value, false)

	case change.Reset:
		s.load(ev.Items)
		s.emit(change.ResetTo(s.items()))
		s.sc.log.Debug("sort reset", logger.Fields(logger.FieldStage, "sort", logger.FieldCount, s.sorted.Len()))
	}
}

func (s *Sort[T]) newEntry(item T) *sortEntry[T] {
	s.seq++
	seq := s.seq
	if s.tieBreak == TieBreakLatestFirst {
		seq = -seq
	}
	return &sortEntry[T]{item: item, seq: seq}
}

// order is the total order of the output: comparator first, then arrival.
func (s *Sort[T]) order(a, b *sortEntry[T]) int {
	c := s.cmp(a.item, b.item)
	if s.sc.checks && a != b {
		s.checkAntisymmetry(a.item, b.item, c)
	}
	if c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}

func (s *Sort[T]) checkAntisymmetry(a, b T, ab int) {
	if s.violated || sign(ab) == -sign(s.cmp(b, a)) {
		return
	}
	s.violated = true
	s.sc.raise(errors.NonDeterministic("comparator",
		fmt.Sprintf("compare(%v, %v) = %d but compare(%v, %v) = %d", a, b, ab, b, a, s.cmp(b, a))).
		WithDetail(logger.FieldStage, "sort"))
}

// insert places e in the output and returns its rank.
func (s *Sort[T]) insert(e *sortEntry[T]) int {
	r := s.sorted.Search(func(x *sortEntry[T]) bool { return s.order(e, x) < 0 })
	e.node = s.sorted.InsertAt(r, e, false)
	return r
}

// fits reports whether e, currently at rank r, is still ordered against
// its neighbours.
func (s *Sort[T]) fits(e *sortEntry[T], r int) bool {
	if prev := s.sorted.At(r - 1); prev != nil && s.order(prev.Value, e) >= 0 {
		return false
	}
	if next := s.sorted.At(r + 1); next != nil && s.order(e, next.Value) >= 0 {
		return false
	}
	return true
}

func (s *Sort[T]) load(items []T) {
	s.upstream.Clear()
	s.sorted.Clear()
	entries := make([]*sortEntry[T], len(items))
	for i, item := range items {
		entries[i] = s.newEntry(item)
		s.upstream.Append(entries[i], false)
	}
	slices.SortFunc(entries, s.order)
	for _, e := range entries {
		e.node = s.sorted.Append(e, false)
	}
}

func (s *Sort[T]) emit(ev change.Event[T]) {
	emit(s.sc, "sort", &s.out, ev)
}

func (s *Sort[T]) scope() *scope { return s.sc }

func (s *Sort[T]) items() []T {
	out := make([]T, 0, s.sorted.Len())
	s.sorted.Ascend(func(n *orderstat.Node[*sortEntry[T]]) bool {
		out = append(out, n.Value.item)
		return true
	})
	return out
}

func (s *Sort[T]) attach(l change.Listener[change.Event[T]]) func() {
	return s.out.Attach(l)
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}
