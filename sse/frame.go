package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/liveview/change"
)

// Event names used on the wire.
const (
	EventConnected = "connected"
	EventSnapshot  = "snapshot"
	EventChange    = "change"
)

// Frame is one SSE message.
type Frame struct {
	ID    uint64
	Event string
	Data  []byte
}

// WriteTo writes f in text/event-stream format.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if f.ID > 0 {
		fmt.Fprintf(&b, "id: %d\n", f.ID)
	}
	if f.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", f.Event)
	}
	for _, line := range strings.Split(string(f.Data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ChangeMessage is the JSON body of a change frame. Item-level fields
// follow change.Event; Group and GroupIndex are set for grouped views.
type ChangeMessage struct {
	Topic      string `json:"topic"`
	Kind       string `json:"kind"`
	Index      int    `json:"index"`
	OldIndex   *int   `json:"old_index,omitempty"`
	Item       any    `json:"item,omitempty"`
	OldItem    any    `json:"old_item,omitempty"`
	Items      any    `json:"items,omitempty"`
	Group      any    `json:"group,omitempty"`
	GroupIndex *int   `json:"group_index,omitempty"`
}

// SnapshotMessage is the JSON body of a snapshot frame.
type SnapshotMessage struct {
	Topic string `json:"topic"`
	Items any    `json:"items"`
}

func itemMessage[T any](topic string, ev change.Event[T]) ChangeMessage {
	m := ChangeMessage{Topic: topic, Kind: ev.Kind.String(), Index: ev.Index}
	switch ev.Kind {
	case change.Added, change.Removed:
		m.Item = ev.Item
	case change.Replaced:
		m.Item, m.OldItem = ev.Item, ev.OldItem
	case change.Moved:
		m.Item, m.OldIndex = ev.Item, &ev.OldIndex
	case change.Reset:
		m.Items = ev.Items
	}
	return m
}

func groupMessage[K comparable, T any](topic string, ev change.GroupEvent[K, T]) ChangeMessage {
	switch ev.Kind {
	case change.ItemChanged:
		m := itemMessage(topic, ev.Change)
		m.Group, m.GroupIndex = ev.Key, &ev.GroupIndex
		return m
	case change.GroupsReset:
		return ChangeMessage{Topic: topic, Kind: ev.Kind.String(), Items: ev.Groups}
	default:
		return ChangeMessage{Topic: topic, Kind: ev.Kind.String(), Group: ev.Key, GroupIndex: &ev.GroupIndex}
	}
}

func encode(event string, id uint64, v any) (Frame, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Frame{}, err
	}
	return Frame{ID: id, Event: event, Data: data}, nil
}
