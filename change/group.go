package change

import "fmt"

// Group is one bucket of a grouped sequence.
type Group[K comparable, T any] struct {
	Key   K   `json:"key"`
	Items []T `json:"items"`
}

// GroupKind tags a GroupEvent.
type GroupKind int

const (
	GroupAdded GroupKind = iota + 1
	GroupRemoved
	ItemChanged
	GroupsReset
)

func (k GroupKind) String() string {
	switch k {
	case GroupAdded:
		return "GroupAdded"
	case GroupRemoved:
		return "GroupRemoved"
	case ItemChanged:
		return "ItemChanged"
	case GroupsReset:
		return "GroupsReset"
	default:
		return fmt.Sprintf("GroupKind(%d)", int(k))
	}
}

// GroupEvent describes one change of a grouped sequence.
//
//	GroupAdded:   empty group Key created at GroupIndex
//	GroupRemoved: empty group Key removed from GroupIndex
//	ItemChanged:  Change applied to the members of group Key at GroupIndex,
//	              with group-local indices
//	GroupsReset:  everything replaced by Groups
type GroupEvent[K comparable, T any] struct {
	Kind       GroupKind
	Key        K
	GroupIndex int
	Change     Event[T]
	Groups     []Group[K, T]
}

func (e GroupEvent[K, T]) String() string {
	switch e.Kind {
	case ItemChanged:
		return fmt.Sprintf("%v[%d]: %s", e.Key, e.GroupIndex, e.Change)
	case GroupsReset:
		return fmt.Sprintf("GroupsReset(%d groups)", len(e.Groups))
	default:
		return fmt.Sprintf("%s(%v@%d)", e.Kind, e.Key, e.GroupIndex)
	}
}

// CloneGroups deep-copies groups so the result shares no backing arrays.
func CloneGroups[K comparable, T any](groups []Group[K, T]) []Group[K, T] {
	out := make([]Group[K, T], len(groups))
	for i, g := range groups {
		out[i] = Group[K, T]{Key: g.Key, Items: append([]T(nil), g.Items...)}
		if out[i].Items == nil {
			out[i].Items = []T{}
		}
	}
	return out
}
