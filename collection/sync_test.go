package collection

import (
	"cmp"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

func TestSynchronized_ConcurrentMutations(t *testing.T) {
	src, sink := newTestSource[int](t, WithSynchronization(), WithInvariantChecks())
	v := must(CreateView[int](src, Spec[int]{Name: "sorted", Filter: isEven, Compare: cmp.Compare[int]}))

	// Delivery is serialized, so the mirror needs no lock of its own.
	bound := v.Snapshot()
	v.Subscribe(change.Mirror(&bound))

	const writers, perWriter = 4, 200
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = src.Add(w*perWriter + i)
				if i%5 == 4 {
					_, _ = src.RemoveAt(0)
				}
			}
		}(w)
	}

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if snap := v.Snapshot(); !slices.IsSorted(snap) {
				t.Errorf("snapshot not sorted: %v", snap)
				return
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-readerDone

	wantLen := writers * perWriter * 4 / 5
	if src.Len() != wantLen {
		t.Errorf("expected %d items, got %d", wantLen, src.Len())
	}
	diffValues(t, v.Snapshot(), bound)
	if errs := sink.all(); len(errs) != 0 {
		t.Errorf("unexpected reported errors: %v", errs)
	}
}

func TestSynchronized_HandlerMutationRejected(t *testing.T) {
	src, sink := newTestSource[string](t, WithSynchronization())
	v := must(NewView[string](src, "all"))

	var (
		events []change.Event[string]
		inner  error
	)
	v.Subscribe(func(ev change.Event[string]) error {
		events = append(events, ev)
		if ev.Kind == change.Added && ev.Item == "a" {
			inner = src.Add("b")
		}
		return nil
	})

	mustNoErr(t, src.Add("a"))
	if !errors.IsCode(inner, errors.ErrCodeReentrantMutation) {
		t.Fatalf("expected REENTRANT_MUTATION from the handler, got %v", inner)
	}
	diffEvents(t, []change.Event[string]{change.AddedAt("a", 0)}, events)
	diffValues(t, []string{"a"}, src.Snapshot())
	if errs := sink.all(); len(errs) != 0 {
		t.Errorf("unexpected reported errors: %v", errs)
	}

	// Outside of delivery the source accepts mutations again.
	mustNoErr(t, src.Add("c"))
	diffValues(t, []string{"a", "c"}, src.Snapshot())
}

func TestSynchronized_DeliveredBeforeReturn(t *testing.T) {
	src, _ := newTestSource[int](t, WithSynchronization())
	v := must(NewView[int](src, "all"))

	release := make(chan struct{})
	entered := make(chan struct{})
	var (
		mu   sync.Mutex
		seen = map[int]bool{}
	)
	v.Subscribe(func(ev change.Event[int]) error {
		if ev.Item == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		seen[ev.Item] = true
		mu.Unlock()
		return nil
	})

	first := make(chan error, 1)
	go func() { first <- src.Add(1) }()
	<-entered

	// The second mutator applies while the first round is still running
	// and must not return before its own event is delivered.
	second := make(chan error, 1)
	go func() { second <- src.Add(2) }()
	select {
	case err := <-second:
		t.Fatalf("second mutation returned before delivery (err=%v)", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	mustNoErr(t, <-first)
	mustNoErr(t, <-second)
	mu.Lock()
	defer mu.Unlock()
	if !seen[1] || !seen[2] {
		t.Errorf("expected both events delivered, got %v", seen)
	}
}

func TestSynchronized_ErrorHandlerReadsView(t *testing.T) {
	var (
		v     *View[int]
		sizes []int
	)
	src := NewSource[int](
		WithLogger(logger.Nop()),
		WithSynchronization(),
		WithInvariantChecks(),
		WithErrorHandler(func(error) { sizes = append(sizes, v.Len()) }),
	)
	v = must(CreateView[int](src, Spec[int]{Compare: func(a, b int) int { return -1 }}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = src.Add(1)
		_ = src.Add(2)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("error handler blocked on the pipeline lock")
	}
	diffValues(t, []int{2}, sizes)
}

func TestSynchronized_SubscribeFromHandler(t *testing.T) {
	src, _ := newTestSource[int](t, WithSynchronization())
	v := must(NewView[int](src, "all"))
	late := &recorder[change.Event[int]]{}
	var once sync.Once
	v.Subscribe(func(change.Event[int]) error {
		once.Do(func() { v.Subscribe(late.handle) })
		return nil
	})
	mustNoErr(t, src.Add(1))
	mustNoErr(t, src.Add(2))
	diffEvents(t, []change.Event[int]{change.AddedAt(2, 1)}, late.take())
}

func TestSynchronized_SnapshotFromHandler(t *testing.T) {
	src, _ := newTestSource[int](t, WithSynchronization())
	v := must(CreateView[int](src, Spec[int]{Compare: cmp.Compare[int]}))
	var seen []int
	v.Subscribe(func(change.Event[int]) error {
		seen = v.Snapshot()
		return nil
	})
	mustNoErr(t, src.Add(3))
	mustNoErr(t, src.Add(1))
	diffValues(t, []int{1, 3}, seen)
}
