package collection

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
)

func TestSource_Mutations(t *testing.T) {
	src, sink := newTestSource[string](t)
	v := must(NewView[string](src, "raw"))
	rec := &recorder[change.Event[string]]{}
	v.Subscribe(rec.handle)

	mustNoErr(t, src.Add("a"))
	mustNoErr(t, src.Add("c"))
	mustNoErr(t, src.Insert(1, "b"))
	mustNoErr(t, src.Replace(2, "C"))
	mustNoErr(t, src.Move(0, 2))
	mustNoErr(t, src.Refresh(0))
	removed, err := src.RemoveAt(1)
	mustNoErr(t, err)
	if removed != "C" {
		t.Errorf("expected RemoveAt to return C, got %q", removed)
	}
	ok, err := src.Remove("a")
	mustNoErr(t, err)
	if !ok {
		t.Error("expected Remove to find a")
	}

	diffEvents(t, []change.Event[string]{
		change.AddedAt("a", 0),
		change.AddedAt("c", 1),
		change.AddedAt("b", 1),
		change.ReplacedAt("c", "C", 2),
		change.MovedTo("a", 0, 2),
		change.ReplacedAt("b", "b", 0),
		change.RemovedAt("C", 1),
		change.RemovedAt("a", 1),
	}, rec.take())
	diffValues(t, []string{"b"}, src.Snapshot())

	mustNoErr(t, src.Load([]string{"x", "y"}))
	mustNoErr(t, src.Clear())
	diffEvents(t, []change.Event[string]{
		change.ResetTo([]string{"x", "y"}),
		change.ResetTo([]string{}),
	}, rec.take())
	if src.Len() != 0 {
		t.Errorf("expected empty source, got %d", src.Len())
	}
	if errs := sink.all(); len(errs) != 0 {
		t.Errorf("unexpected reported errors: %v", errs)
	}
}

func TestSource_RemoveAbsentIsNoop(t *testing.T) {
	src, _ := newTestSource[string](t)
	mustNoErr(t, src.Add("a"))
	v := must(NewView[string](src, "raw"))
	rec := &recorder[change.Event[string]]{}
	v.Subscribe(rec.handle)

	ok, err := src.Remove("zz")
	mustNoErr(t, err)
	if ok {
		t.Error("expected Remove of an absent item to report false")
	}
	if evs := rec.take(); len(evs) != 0 {
		t.Errorf("expected no events, got %v", evs)
	}
}

func TestSource_IndexOutOfRange(t *testing.T) {
	src, _ := newTestSource[string](t)
	mustNoErr(t, src.Load([]string{"a", "b"}))
	v := must(NewView[string](src, "raw"))
	rec := &recorder[change.Event[string]]{}
	v.Subscribe(rec.handle)

	tests := []struct {
		name string
		op   func() error
	}{
		{"insert past end", func() error { return src.Insert(3, "x") }},
		{"insert negative", func() error { return src.Insert(-1, "x") }},
		{"remove at len", func() error { _, err := src.RemoveAt(2); return err }},
		{"replace negative", func() error { return src.Replace(-1, "x") }},
		{"move from out of range", func() error { return src.Move(2, 0) }},
		{"move to out of range", func() error { return src.Move(0, 2) }},
		{"refresh out of range", func() error { return src.Refresh(5) }},
		{"at out of range", func() error { _, err := src.At(2); return err }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			if !errors.IsCode(err, errors.ErrCodeIndexOutOfRange) {
				t.Fatalf("expected INDEX_OUT_OF_RANGE, got %v", err)
			}
		})
	}
	diffValues(t, []string{"a", "b"}, src.Snapshot())
	if evs := rec.take(); len(evs) != 0 {
		t.Errorf("expected no events after rejected mutations, got %v", evs)
	}
}

func TestSource_Identity(t *testing.T) {
	type row struct {
		ID   int
		Name string
	}
	src, _ := newTestSource[row](t, WithIdentity(func(r row) any { return r.ID }))
	mustNoErr(t, src.Load([]row{{1, "a"}, {2, "b"}}))

	if i := must(src.IndexOf(row{ID: 2})); i != 1 {
		t.Errorf("expected IndexOf by id to return 1, got %d", i)
	}
	ok, err := src.Remove(row{ID: 1, Name: "renamed"})
	mustNoErr(t, err)
	if !ok {
		t.Error("expected Remove by id to succeed")
	}
	diffValues(t, []row{{2, "b"}}, src.Snapshot())
}

func TestSource_PointerIdentity(t *testing.T) {
	src, _ := newTestSource[*person](t)
	a1 := &person{Name: "alice"}
	a2 := &person{Name: "alice"}
	mustNoErr(t, src.Add(a1))

	if i := must(src.IndexOf(a2)); i != -1 {
		t.Errorf("expected structurally equal item to be absent, got index %d", i)
	}
	if i := must(src.IndexOf(a1)); i != 0 {
		t.Errorf("expected index 0, got %d", i)
	}
}

func TestSource_ReentrantMutation(t *testing.T) {
	src, _ := newTestSource[string](t)
	v := must(NewView[string](src, "raw"))

	var inner error
	v.Subscribe(func(ev change.Event[string]) error {
		if ev.Kind == change.Added && ev.Item == "a" {
			inner = src.Add("from-handler")
		}
		return nil
	})

	mustNoErr(t, src.Add("a"))
	if !errors.IsCode(inner, errors.ErrCodeReentrantMutation) {
		t.Fatalf("expected REENTRANT_MUTATION, got %v", inner)
	}
	diffValues(t, []string{"a"}, src.Snapshot())

	// The guard is released once the mutation returns.
	mustNoErr(t, src.Add("b"))
}

func TestSource_SnapshotIsCopy(t *testing.T) {
	src, _ := newTestSource[string](t)
	mustNoErr(t, src.Load([]string{"a", "b"}))
	snap := src.Snapshot()
	snap[0] = "mutated"
	diffValues(t, []string{"a", "b"}, src.Snapshot())
}

func TestSource_UncomparableItems(t *testing.T) {
	type tagged struct {
		Name string
		Tags []string
	}
	src, _ := newTestSource[tagged](t)
	a := tagged{Name: "a", Tags: []string{"x"}}
	mustNoErr(t, src.Add(a))

	ok, err := src.Remove(a)
	if ok || !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Remove() = %v, %v; want false, INVALID_INPUT", ok, err)
	}
	if i, err := src.IndexOf(a); i != -1 || !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("IndexOf() = %d, %v; want -1, INVALID_INPUT", i, err)
	}
	diffValues(t, []tagged{a}, src.Snapshot())

	byName, _ := newTestSource[tagged](t, WithIdentity(func(x tagged) any { return x.Name }))
	mustNoErr(t, byName.Add(a))
	ok, err = byName.Remove(tagged{Name: "a"})
	mustNoErr(t, err)
	if !ok {
		t.Error("expected Remove by name to succeed")
	}
}

func TestSource_UncomparableDynamicValue(t *testing.T) {
	src, _ := newTestSource[any](t)
	mustNoErr(t, src.Add([]int{1}))
	if _, err := src.Remove([]int{1}); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if src.Len() != 1 {
		t.Errorf("expected the item to stay, got %d items", src.Len())
	}
}

func TestSource_IdentityTypeMismatch(t *testing.T) {
	var buf bytes.Buffer
	src := NewSource[string](
		WithLogger(newBufferedLogger(&buf)),
		WithIdentity(func(n int) any { return n }),
	)
	if !strings.Contains(buf.String(), "identity option ignored") {
		t.Errorf("expected a warning about the ignored identity, got %q", buf.String())
	}

	mustNoErr(t, src.Add("a"))
	ok, err := src.Remove("a")
	mustNoErr(t, err)
	if !ok {
		t.Error("expected the default identity to find a")
	}
}

func TestSource_ClearEmpty(t *testing.T) {
	src, sink := newTestSource[string](t)
	v := must(NewView[string](src, "raw"))
	rec := &recorder[change.Event[string]]{}
	v.Subscribe(rec.handle)

	mustNoErr(t, src.Clear())
	diffEvents(t, []change.Event[string]{change.ResetTo([]string{})}, rec.take())

	mustNoErr(t, src.Clear())
	diffEvents(t, []change.Event[string]{change.ResetTo([]string{})}, rec.take())
	diffValues(t, []string{}, src.Snapshot())
	if errs := sink.all(); len(errs) != 0 {
		t.Errorf("unexpected reported errors: %v", errs)
	}
}
