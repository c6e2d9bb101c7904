package change

import (
	"fmt"

	"github.com/kbukum/liveview/errors"
)

// Apply replays ev against seq and returns the updated sequence. seq may be
// modified in place.
func Apply[T any](seq []T, ev Event[T]) ([]T, error) {
	switch ev.Kind {
	case Added:
		if ev.Index < 0 || ev.Index > len(seq) {
			return seq, errors.IndexOutOfRange("apply Added", ev.Index, len(seq)+1)
		}
		var zero T
		seq = append(seq, zero)
		copy(seq[ev.Index+1:], seq[ev.Index:])
		seq[ev.Index] = ev.Item
	case Removed:
		if ev.Index < 0 || ev.Index >= len(seq) {
			return seq, errors.IndexOutOfRange("apply Removed", ev.Index, len(seq))
		}
		seq = append(seq[:ev.Index], seq[ev.Index+1:]...)
	case Replaced:
		if ev.Index < 0 || ev.Index >= len(seq) {
			return seq, errors.IndexOutOfRange("apply Replaced", ev.Index, len(seq))
		}
		seq[ev.Index] = ev.Item
	case Moved:
		if ev.OldIndex < 0 || ev.OldIndex >= len(seq) {
			return seq, errors.IndexOutOfRange("apply Moved", ev.OldIndex, len(seq))
		}
		if ev.Index < 0 || ev.Index >= len(seq) {
			return seq, errors.IndexOutOfRange("apply Moved", ev.Index, len(seq))
		}
		item := seq[ev.OldIndex]
		if ev.OldIndex < ev.Index {
			copy(seq[ev.OldIndex:], seq[ev.OldIndex+1:ev.Index+1])
		} else {
			copy(seq[ev.Index+1:], seq[ev.Index:ev.OldIndex])
		}
		seq[ev.Index] = item
	case Reset:
		seq = append(seq[:0:0], ev.Items...)
	default:
		return seq, errors.InvalidInput("kind", fmt.Sprintf("unknown event kind %d", int(ev.Kind)))
	}
	return seq, nil
}

// Replay applies events in order to an empty sequence.
func Replay[T any](events []Event[T]) ([]T, error) {
	seq := []T{}
	for _, ev := range events {
		var err error
		if seq, err = Apply(seq, ev); err != nil {
			return seq, err
		}
	}
	return seq, nil
}

// ApplyGroup replays ev against groups and returns the updated groups.
func ApplyGroup[K comparable, T any](groups []Group[K, T], ev GroupEvent[K, T]) ([]Group[K, T], error) {
	switch ev.Kind {
	case GroupAdded:
		if ev.GroupIndex < 0 || ev.GroupIndex > len(groups) {
			return groups, errors.IndexOutOfRange("apply GroupAdded", ev.GroupIndex, len(groups)+1)
		}
		groups = append(groups, Group[K, T]{})
		copy(groups[ev.GroupIndex+1:], groups[ev.GroupIndex:])
		groups[ev.GroupIndex] = Group[K, T]{Key: ev.Key, Items: []T{}}
	case GroupRemoved:
		if err := checkGroup(groups, ev); err != nil {
			return groups, err
		}
		groups = append(groups[:ev.GroupIndex], groups[ev.GroupIndex+1:]...)
	case ItemChanged:
		if err := checkGroup(groups, ev); err != nil {
			return groups, err
		}
		items, err := Apply(groups[ev.GroupIndex].Items, ev.Change)
		if err != nil {
			return groups, err
		}
		groups[ev.GroupIndex].Items = items
	case GroupsReset:
		groups = CloneGroups(ev.Groups)
	default:
		return groups, errors.InvalidInput("kind", fmt.Sprintf("unknown group event kind %d", int(ev.Kind)))
	}
	return groups, nil
}

// ReplayGroups applies events in order to an empty grouping.
func ReplayGroups[K comparable, T any](events []GroupEvent[K, T]) ([]Group[K, T], error) {
	groups := []Group[K, T]{}
	for _, ev := range events {
		var err error
		if groups, err = ApplyGroup(groups, ev); err != nil {
			return groups, err
		}
	}
	return groups, nil
}

func checkGroup[K comparable, T any](groups []Group[K, T], ev GroupEvent[K, T]) error {
	if ev.GroupIndex < 0 || ev.GroupIndex >= len(groups) {
		return errors.IndexOutOfRange("apply "+ev.Kind.String(), ev.GroupIndex, len(groups))
	}
	if groups[ev.GroupIndex].Key != ev.Key {
		return errors.InvalidInput("key", fmt.Sprintf("group %d has key %v, event names %v",
			ev.GroupIndex, groups[ev.GroupIndex].Key, ev.Key))
	}
	return nil
}

// Mirror returns a handler that keeps *dst equal to the sequence it observes.
// Seed *dst with a snapshot before subscribing.
func Mirror[T any](dst *[]T) func(Event[T]) error {
	return func(ev Event[T]) error {
		seq, err := Apply(*dst, ev)
		*dst = seq
		return err
	}
}

// MirrorGroups is Mirror for grouped sequences.
func MirrorGroups[K comparable, T any](dst *[]Group[K, T]) func(GroupEvent[K, T]) error {
	return func(ev GroupEvent[K, T]) error {
		groups, err := ApplyGroup(*dst, ev)
		*dst = groups
		return err
	}
}
