package collection

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

// Source is the mutable root of a pipeline. It owns item identity and raw
// order, and emits exactly one event per successful mutation.
type Source[T any] struct {
	sc       *scope
	list     []T
	identity func(T) any
	out      change.Notifier[change.Event[T]]
}

var _ Stage[int] = (*Source[int])(nil)

// NewSource creates an empty source.
func NewSource[T any](opts ...Option) *Source[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	s := &Source[T]{sc: newScope(o), list: []T{}}
	switch fn := o.identity.(type) {
	case nil:
	case func(T) any:
		s.identity = fn
	default:
		s.sc.log.Warn("identity option ignored", logger.Fields(
			"want", fmt.Sprintf("func(%v) any", reflect.TypeFor[T]()),
			"got", fmt.Sprintf("%T", fn),
		))
	}
	if s.identity == nil && reflect.TypeFor[T]().Comparable() {
		s.identity = func(item T) any { return item }
	}
	s.sc.log.Debug("source created", logger.Fields("synchronized", s.sc.synchronized, "checks", s.sc.checks))
	return s
}

// Add appends item.
func (s *Source[T]) Add(item T) error {
	return s.sc.mutate("Add", -1, func() (bool, error) {
		s.list = append(s.list, item)
		s.emit(change.AddedAt(item, len(s.list)-1))
		return true, nil
	})
}

// Insert inserts item at index, 0 <= index <= Len().
func (s *Source[T]) Insert(index int, item T) error {
	return s.sc.mutate("Insert", index, func() (bool, error) {
		if index < 0 || index > len(s.list) {
			return false, errors.IndexOutOfRange("Insert", index, len(s.list)+1)
		}
		s.list = slices.Insert(s.list, index, item)
		s.emit(change.AddedAt(item, index))
		return true, nil
	})
}

// Remove removes the first item with the same identity as item. It reports
// whether an item was removed; removing an absent item changes nothing and
// emits nothing. It fails like IndexOf when items cannot be compared.
func (s *Source[T]) Remove(item T) (bool, error) {
	var removed bool
	err := s.sc.mutate("Remove", -1, func() (bool, error) {
		i, err := s.indexOf(item)
		if err != nil || i < 0 {
			return false, err
		}
		old := s.list[i]
		s.list = slices.Delete(s.list, i, i+1)
		s.emit(change.RemovedAt(old, i))
		removed = true
		return true, nil
	})
	return removed, err
}

// RemoveAt removes and returns the item at index.
func (s *Source[T]) RemoveAt(index int) (T, error) {
	var old T
	err := s.sc.mutate("RemoveAt", index, func() (bool, error) {
		if index < 0 || index >= len(s.list) {
			return false, errors.IndexOutOfRange("RemoveAt", index, len(s.list))
		}
		old = s.list[index]
		s.list = slices.Delete(s.list, index, index+1)
		s.emit(change.RemovedAt(old, index))
		return true, nil
	})
	return old, err
}

// Replace puts item at index in place of the current one.
func (s *Source[T]) Replace(index int, item T) error {
	return s.sc.mutate("Replace", index, func() (bool, error) {
		if index < 0 || index >= len(s.list) {
			return false, errors.IndexOutOfRange("Replace", index, len(s.list))
		}
		old := s.list[index]
		s.list[index] = item
		s.emit(change.ReplacedAt(old, item, index))
		return true, nil
	})
}

// Refresh announces that the item at index changed internally, so every
// stage re-evaluates it. It is emitted as a replacement of the item by
// itself.
func (s *Source[T]) Refresh(index int) error {
	return s.sc.mutate("Refresh", index, func() (bool, error) {
		if index < 0 || index >= len(s.list) {
			return false, errors.IndexOutOfRange("Refresh", index, len(s.list))
		}
		item := s.list[index]
		s.emit(change.ReplacedAt(item, item, index))
		return true, nil
	})
}

// Move moves the item at from so that it ends up at to.
func (s *Source[T]) Move(from, to int) error {
	return s.sc.mutate("Move", from, func() (bool, error) {
		if from < 0 || from >= len(s.list) {
			return false, errors.IndexOutOfRange("Move", from, len(s.list))
		}
		if to < 0 || to >= len(s.list) {
			return false, errors.IndexOutOfRange("Move", to, len(s.list))
		}
		item := s.list[from]
		s.list = slices.Insert(slices.Delete(s.list, from, from+1), to, item)
		s.emit(change.MovedTo(item, from, to))
		return true, nil
	})
}

// Clear removes every item and emits an empty Reset.
func (s *Source[T]) Clear() error {
	return s.sc.mutate("Clear", -1, func() (bool, error) {
		s.list = []T{}
		s.emit(change.ResetTo([]T{}))
		s.sc.log.Debug("source cleared")
		return true, nil
	})
}

// Load replaces the content with items and emits one Reset.
func (s *Source[T]) Load(items []T) error {
	return s.sc.mutate("Load", -1, func() (bool, error) {
		s.list = slices.Clone(items)
		if s.list == nil {
			s.list = []T{}
		}
		s.emit(change.ResetTo(slices.Clone(s.list)))
		s.sc.log.Debug("source loaded", logger.Fields(logger.FieldCount, len(s.list)))
		return true, nil
	})
}

// Len returns the number of items.
func (s *Source[T]) Len() int {
	var n int
	s.sc.read(func() { n = len(s.list) })
	return n
}

// At returns the item at index.
func (s *Source[T]) At(index int) (T, error) {
	var (
		item T
		err  error
	)
	s.sc.read(func() {
		if index < 0 || index >= len(s.list) {
			err = errors.IndexOutOfRange("At", index, len(s.list))
			return
		}
		item = s.list[index]
	})
	return item, err
}

// IndexOf returns the position of the first item with the same identity
// as item, or -1. It fails with INVALID_INPUT when items cannot be compared:
// T is not comparable and no WithIdentity was given, or an identity value
// is not comparable.
func (s *Source[T]) IndexOf(item T) (int, error) {
	var (
		i   int
		err error
	)
	s.sc.read(func() { i, err = s.indexOf(item) })
	return i, err
}

// Snapshot returns a copy of the items.
func (s *Source[T]) Snapshot() []T {
	var out []T
	s.sc.read(func() { out = slices.Clone(s.list) })
	return out
}

func (s *Source[T]) indexOf(item T) (i int, err error) {
	if s.identity == nil {
		return -1, errors.InvalidInput("identity",
			fmt.Sprintf("%v is not comparable; set an identity with WithIdentity", reflect.TypeFor[T]()))
	}
	defer func() {
		if r := recover(); r != nil {
			i, err = -1, errors.InvalidInput("identity", fmt.Sprint(r))
		}
	}()
	id := s.identity(item)
	for i, x := range s.list {
		if s.identity(x) == id {
			return i, nil
		}
	}
	return -1, nil
}

func (s *Source[T]) emit(ev change.Event[T]) {
	emit(s.sc, "source", &s.out, ev)
}

func (s *Source[T]) scope() *scope { return s.sc }

func (s *Source[T]) items() []T { return slices.Clone(s.list) }

func (s *Source[T]) attach(l change.Listener[change.Event[T]]) func() {
	return s.out.Attach(l)
}
