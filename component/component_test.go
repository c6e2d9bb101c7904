package component

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/liveview/errors"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	desc     *Description
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.events != nil {
		*m.events = append(*m.events, "start "+m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.events != nil {
		*m.events = append(*m.events, "stop "+m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

type describedComponent struct{ mockComponent }

func (d *describedComponent) Describe() Description { return *d.desc }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "sse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := r.Register(&mockComponent{name: "sse"})
	if !errors.IsCode(err, errors.ErrCodeAlreadyExists) {
		t.Fatalf("expected ALREADY_EXISTS, got %v", err)
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "roster"}
	_ = r.Register(c)

	if got := r.Get("roster"); got != c {
		t.Errorf("Get(roster) = %v, want %v", got, c)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestLifecycleOrder(t *testing.T) {
	r := NewRegistry()
	var events []string
	for _, name := range []string{"roster", "sse", "http"} {
		_ = r.Register(&mockComponent{name: name, events: &events})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start roster", "start sse", "start http", "stop http", "stop sse", "stop roster"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestStartAllRollsBack(t *testing.T) {
	r := NewRegistry()
	var events []string
	_ = r.Register(&mockComponent{name: "roster", events: &events})
	_ = r.Register(&mockComponent{name: "sse", events: &events})
	_ = r.Register(&mockComponent{name: "http", events: &events, startErr: fmt.Errorf("address in use")})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}

	want := []string{"start roster", "start sse", "start http", "stop sse", "stop roster"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("rollback mismatch (-want +got):\n%s", diff)
	}

	events = nil
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll after rollback: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no stops after rollback, got %v", events)
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("stop a")})
	_ = r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("stop b")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected error from StopAll")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("expected two joined errors, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for i, s := range tt.statuses {
				name := fmt.Sprintf("c%d", i)
				_ = r.Register(&mockComponent{name: name, health: Health{Name: name, Status: s}})
			}
			results := r.HealthAll(context.Background())
			if len(results) != len(tt.statuses) {
				t.Fatalf("expected %d results, got %d", len(tt.statuses), len(results))
			}
			if got := Status(results); got != tt.want {
				t.Errorf("Status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockComponent{name: "plain"})
	_ = r.Register(&describedComponent{mockComponent{name: "http", desc: &Description{Type: "server", Port: 8080}}})

	want := []Description{{Name: "http", Type: "server", Port: 8080}}
	if diff := cmp.Diff(want, r.Describe()); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}
