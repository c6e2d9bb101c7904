package change

import "fmt"

// Kind tags an Event.
type Kind int

const (
	Added Kind = iota + 1
	Removed
	Replaced
	Moved
	Reset
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "Added"
	case Removed:
		return "Removed"
	case Replaced:
		return "Replaced"
	case Moved:
		return "Moved"
	case Reset:
		return "Reset"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event describes one change of an ordered sequence.
//
//	Added:    Item inserted at Index
//	Removed:  Item removed from Index
//	Replaced: OldItem at Index replaced by Item
//	Moved:    Item moved from OldIndex to Index
//	Reset:    sequence replaced wholesale by Items
type Event[T any] struct {
	Kind     Kind
	Item     T
	OldItem  T
	Index    int
	OldIndex int
	Items    []T
}

// AddedAt describes item inserted at index.
func AddedAt[T any](item T, index int) Event[T] {
	return Event[T]{Kind: Added, Item: item, Index: index}
}

// RemovedAt describes item removed from index.
func RemovedAt[T any](item T, index int) Event[T] {
	return Event[T]{Kind: Removed, Item: item, Index: index}
}

// ReplacedAt describes old replaced by item at index.
func ReplacedAt[T any](old, item T, index int) Event[T] {
	return Event[T]{Kind: Replaced, Item: item, OldItem: old, Index: index}
}

// MovedTo describes item moving from one position to another.
func MovedTo[T any](item T, from, to int) Event[T] {
	return Event[T]{Kind: Moved, Item: item, OldIndex: from, Index: to}
}

// ResetTo describes the sequence being replaced by items. items is not copied.
func ResetTo[T any](items []T) Event[T] {
	if items == nil {
		items = []T{}
	}
	return Event[T]{Kind: Reset, Items: items}
}

func (e Event[T]) String() string {
	switch e.Kind {
	case Added, Removed:
		return fmt.Sprintf("%s(%v@%d)", e.Kind, e.Item, e.Index)
	case Replaced:
		return fmt.Sprintf("Replaced(%v->%v@%d)", e.OldItem, e.Item, e.Index)
	case Moved:
		return fmt.Sprintf("Moved(%v %d->%d)", e.Item, e.OldIndex, e.Index)
	case Reset:
		return fmt.Sprintf("Reset(%d items)", len(e.Items))
	default:
		return e.Kind.String()
	}
}
