package collection

import (
	"testing"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
)

func isEven(n int) bool { return n%2 == 0 }

func TestFilter_ActiveMembers(t *testing.T) {
	src, _ := newTestSource[*person](t)
	v := must(CreateView[*person](src, Spec[*person]{
		Name:   "active",
		Filter: func(p *person) bool { return p.Active },
	}))
	rec := &recorder[change.Event[*person]]{}
	v.Subscribe(rec.handle)

	alice := &person{Name: "alice", Active: true}
	bob := &person{Name: "bob"}
	carol := &person{Name: "carol", Active: true}
	for _, p := range []*person{alice, bob, carol} {
		mustNoErr(t, src.Add(p))
	}

	diffValues(t, []string{"alice", "carol"}, names(v.Snapshot()))
	diffEvents(t, []change.Event[*person]{
		change.AddedAt(alice, 0),
		change.AddedAt(carol, 1),
	}, rec.take())
}

func TestFilter_ReplaceTransitions(t *testing.T) {
	tests := []struct {
		name  string
		index int
		item  int
		want  []change.Event[int]
		snap  []int
	}{
		{"pass to pass", 0, 6, []change.Event[int]{change.ReplacedAt(2, 6, 0)}, []int{6, 4}},
		{"pass to fail", 0, 5, []change.Event[int]{change.RemovedAt(2, 0)}, []int{4}},
		{"fail to pass", 1, 8, []change.Event[int]{change.AddedAt(8, 1)}, []int{2, 8, 4}},
		{"fail to fail", 1, 7, nil, []int{2, 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, _ := newTestSource[int](t)
			mustNoErr(t, src.Load([]int{2, 3, 4}))
			f := must(NewFilter[int](src, isEven))
			v := must(NewView[int](f, "even"))
			rec := &recorder[change.Event[int]]{}
			v.Subscribe(rec.handle)

			mustNoErr(t, src.Replace(tc.index, tc.item))
			diffEvents(t, tc.want, rec.take())
			diffValues(t, tc.snap, v.Snapshot())
		})
	}
}

func TestFilter_Removed(t *testing.T) {
	src, _ := newTestSource[int](t)
	mustNoErr(t, src.Load([]int{2, 3, 4}))
	v := must(CreateView[int](src, Spec[int]{Filter: isEven}))
	rec := &recorder[change.Event[int]]{}
	v.Subscribe(rec.handle)

	_, err := src.RemoveAt(1)
	mustNoErr(t, err)
	_, err = src.RemoveAt(1)
	mustNoErr(t, err)

	diffEvents(t, []change.Event[int]{change.RemovedAt(4, 1)}, rec.take())
	diffValues(t, []int{2}, v.Snapshot())
}

func TestFilter_Moved(t *testing.T) {
	src, _ := newTestSource[int](t)
	mustNoErr(t, src.Load([]int{2, 3, 4, 6}))
	v := must(CreateView[int](src, Spec[int]{Filter: isEven}))
	rec := &recorder[change.Event[int]]{}
	v.Subscribe(rec.handle)

	mustNoErr(t, src.Move(0, 3)) // [3 4 6 2]
	diffEvents(t, []change.Event[int]{change.MovedTo(2, 0, 2)}, rec.take())

	mustNoErr(t, src.Move(1, 0)) // [4 3 6 2], filtered order unchanged
	mustNoErr(t, src.Move(1, 3)) // [4 6 2 3], failing item
	if evs := rec.take(); len(evs) != 0 {
		t.Errorf("expected no events, got %v", evs)
	}
	diffValues(t, []int{4, 6, 2}, v.Snapshot())
}

func TestFilter_Refresh(t *testing.T) {
	src, _ := newTestSource[int](t)
	mustNoErr(t, src.Load([]int{1, 5, 10, 20}))
	limit := 10
	f := must(NewFilter[int](src, func(n int) bool { return n >= limit }))
	v := must(NewView[int](f, "above"))
	rec := &recorder[change.Event[int]]{}
	v.Subscribe(rec.handle)
	diffValues(t, []int{10, 20}, v.Snapshot())

	limit = 5
	mustNoErr(t, f.Refresh())
	diffEvents(t, []change.Event[int]{change.ResetTo([]int{5, 10, 20})}, rec.take())
}

func TestFilter_SourceReset(t *testing.T) {
	src, _ := newTestSource[int](t)
	v := must(CreateView[int](src, Spec[int]{Filter: isEven}))
	rec := &recorder[change.Event[int]]{}
	v.Subscribe(rec.handle)

	mustNoErr(t, src.Load([]int{1, 2, 3, 4}))
	mustNoErr(t, src.Clear())
	diffEvents(t, []change.Event[int]{
		change.ResetTo([]int{2, 4}),
		change.ResetTo([]int{}),
	}, rec.take())
}

func TestFilter_InvalidArguments(t *testing.T) {
	src, _ := newTestSource[int](t)
	if _, err := NewFilter[int](src, nil); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for nil predicate, got %v", err)
	}
	if _, err := NewFilter[int](nil, isEven); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for nil upstream, got %v", err)
	}
}
