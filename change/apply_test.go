package change

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kbukum/liveview/errors"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		seq  []string
		ev   Event[string]
		want []string
	}{
		{"add front", []string{"b"}, AddedAt("a", 0), []string{"a", "b"}},
		{"add end", []string{"a"}, AddedAt("b", 1), []string{"a", "b"}},
		{"remove middle", []string{"a", "b", "c"}, RemovedAt("b", 1), []string{"a", "c"}},
		{"replace", []string{"a", "b"}, ReplacedAt("b", "x", 1), []string{"a", "x"}},
		{"move forward", []string{"a", "b", "c", "d"}, MovedTo("a", 0, 2), []string{"b", "c", "a", "d"}},
		{"move backward", []string{"a", "b", "c", "d"}, MovedTo("d", 3, 1), []string{"a", "d", "b", "c"}},
		{"move in place", []string{"a", "b"}, MovedTo("b", 1, 1), []string{"a", "b"}},
		{"reset", []string{"a"}, ResetTo([]string{"x", "y"}), []string{"x", "y"}},
		{"reset empty", []string{"a"}, ResetTo[string](nil), []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(append([]string(nil), tc.seq...), tc.ev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		ev   Event[int]
	}{
		{"add past end", AddedAt(1, 3)},
		{"remove missing", RemovedAt(1, 2)},
		{"replace negative", ReplacedAt(0, 1, -1)},
		{"move from", MovedTo(1, 5, 0)},
		{"move to", MovedTo(1, 0, 5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply([]int{1, 2}, tc.ev)
			if !errors.IsCode(err, errors.ErrCodeIndexOutOfRange) {
				t.Errorf("expected INDEX_OUT_OF_RANGE, got %v", err)
			}
		})
	}
}

func TestApply_UnknownKind(t *testing.T) {
	_, err := Apply([]int{}, Event[int]{})
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestReplay(t *testing.T) {
	events := []Event[string]{
		AddedAt("a", 0),
		AddedAt("c", 1),
		AddedAt("b", 1),
		ReplacedAt("c", "d", 2),
		MovedTo("d", 2, 0),
		RemovedAt("a", 1),
	}
	got, err := Replay(events)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"d", "b"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMirror(t *testing.T) {
	var dst []int
	h := Mirror(&dst)
	for _, ev := range []Event[int]{AddedAt(1, 0), AddedAt(2, 1), RemovedAt(1, 0)} {
		if err := h(ev); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]int{2}, dst); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if err := h(RemovedAt(9, 4)); err == nil {
		t.Error("expected error for out-of-range event")
	}
}

func TestApplyGroup(t *testing.T) {
	events := []GroupEvent[string, string]{
		{Kind: GroupAdded, Key: "eng", GroupIndex: 0},
		{Kind: ItemChanged, Key: "eng", GroupIndex: 0, Change: AddedAt("alice", 0)},
		{Kind: GroupAdded, Key: "sales", GroupIndex: 1},
		{Kind: ItemChanged, Key: "sales", GroupIndex: 1, Change: AddedAt("bob", 0)},
		{Kind: ItemChanged, Key: "eng", GroupIndex: 0, Change: RemovedAt("alice", 0)},
		{Kind: GroupRemoved, Key: "eng", GroupIndex: 0},
	}
	got, err := ReplayGroups(events)
	if err != nil {
		t.Fatal(err)
	}
	want := []Group[string, string]{{Key: "sales", Items: []string{"bob"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyGroup_KeyMismatch(t *testing.T) {
	groups := []Group[string, int]{{Key: "a", Items: []int{}}}
	_, err := ApplyGroup(groups, GroupEvent[string, int]{Kind: GroupRemoved, Key: "b", GroupIndex: 0})
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestApplyGroup_Reset(t *testing.T) {
	src := []Group[string, int]{{Key: "a", Items: []int{1, 2}}}
	got, err := ApplyGroup(nil, GroupEvent[string, int]{Kind: GroupsReset, Groups: src})
	if err != nil {
		t.Fatal(err)
	}
	got[0].Items[0] = 99
	if src[0].Items[0] != 1 {
		t.Error("reset must not alias the event payload")
	}
}

func TestMirrorGroups(t *testing.T) {
	var dst []Group[string, int]
	h := MirrorGroups(&dst)
	_ = h(GroupEvent[string, int]{Kind: GroupAdded, Key: "x", GroupIndex: 0})
	_ = h(GroupEvent[string, int]{Kind: ItemChanged, Key: "x", GroupIndex: 0, Change: AddedAt(7, 0)})
	if len(dst) != 1 || dst[0].Key != "x" || len(dst[0].Items) != 1 || dst[0].Items[0] != 7 {
		t.Errorf("unexpected mirror state %v", dst)
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event[string]
		want string
	}{
		{AddedAt("a", 0), "Added(a@0)"},
		{RemovedAt("a", 2), "Removed(a@2)"},
		{ReplacedAt("a", "b", 1), "Replaced(a->b@1)"},
		{MovedTo("a", 0, 3), "Moved(a 0->3)"},
		{ResetTo([]string{"x"}), "Reset(1 items)"},
	}
	for _, tc := range tests {
		if got := tc.ev.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}
