package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/liveview/component"
	"github.com/kbukum/liveview/config"
	"github.com/kbukum/liveview/logger"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

// mockComponent records its lifecycle into a shared journal.
type mockComponent struct {
	name     string
	startErr error
	status   component.HealthStatus
	journal  *journal
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.journal.add("start " + m.name)
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.journal.add("stop " + m.name)
	return nil
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	status := m.status
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: m.name, Status: status}
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) hook(s string) Hook {
	return func(context.Context) error {
		j.add(s)
		return nil
	}
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc"}},
		WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" {
		t.Errorf("Name = %q", app.Name)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied: environment %q", app.Cfg.Environment)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil {
		t.Fatal("expected validation error for a nameless service")
	}
}

func TestRun_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}
	_ = app.RegisterComponent(&mockComponent{name: "roster", journal: j})
	_ = app.RegisterComponent(&mockComponent{name: "http", journal: j})
	app.OnStart(j.hook("on start"))
	app.OnStop(j.hook("stop meter"), j.hook("stop tracer"))

	ctx, cancel := context.WithCancel(context.Background())
	app.OnStart(func(context.Context) error {
		cancel()
		return nil
	})
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"start roster", "start http", "on start", "stop http", "stop roster", "stop tracer", "stop meter"}
	if diff := cmp.Diff(want, j.all()); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestStart_ComponentFailure(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}
	_ = app.RegisterComponent(&mockComponent{name: "roster", journal: j})
	_ = app.RegisterComponent(&mockComponent{name: "http", journal: j, startErr: fmt.Errorf("address in use")})
	app.OnStart(j.hook("on start"))

	if err := app.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail")
	}
	want := []string{"start roster", "start http", "stop roster"}
	if diff := cmp.Diff(want, j.all()); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "ok", journal: &journal{}})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("ReadyCheck: %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{name: "sick", status: component.StatusDegraded, journal: &journal{}})
	if err := app.ReadyCheck(context.Background()); err == nil {
		t.Error("expected ReadyCheck to report the degraded component")
	}
}

func TestTelemetry_Disabled(t *testing.T) {
	app := newTestApp(t)
	inst, err := app.Telemetry(context.Background())
	if err != nil || inst != nil {
		t.Errorf("Telemetry() = %v, %v; want nil, nil", inst, err)
	}
}
