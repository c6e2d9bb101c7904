package collection

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/logger"
)

type person struct {
	Name   string
	Dept   string
	Active bool
	Age    int
}

func names(ps []*person) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

// errSink collects what the pipeline reports out of band.
type errSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errSink) handle(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *errSink) all() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// recorder collects the events delivered to one handler.
type recorder[E any] struct {
	mu     sync.Mutex
	events []E
}

func (r *recorder[E]) handle(ev E) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recorder[E]) take() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func newTestSource[T any](t *testing.T, opts ...Option) (*Source[T], *errSink) {
	t.Helper()
	sink := &errSink{}
	base := []Option{WithLogger(logger.Nop()), WithErrorHandler(sink.handle)}
	return NewSource[T](append(base, opts...)...), sink
}

func newBufferedLogger(buf *bytes.Buffer) *logger.Logger {
	cfg := &logger.Config{Level: "debug", Format: "json"}
	return logger.NewWithWriter(cfg, "test", buf)
}

// must unwraps constructor results in test setup.
func must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func diffEvents[T any](t *testing.T, want, got []change.Event[T]) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func diffValues(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
