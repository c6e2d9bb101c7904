package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/kbukum/liveview/component"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/version"
)

// App is a service with uniform lifecycle management. C is the typed
// configuration.
type App[C Config] struct {
	Name       string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		lc := base.Logging
		if lc.ServiceName == "" {
			lc.ServiceName = base.Name
		}
		logger.Init(lc)
		o.logger = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:            base.Name,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          o.logger,
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// RegisterComponent adds a component to the registry. Components start in
// registration order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck reports the components that are not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []error
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			unhealthy = append(unhealthy, fmt.Errorf("%s is %s: %s", h.Name, h.Status, h.Message))
		}
	}
	return stderrors.Join(unhealthy...)
}

// Run starts the components, runs the OnStart hooks, and blocks until a
// shutdown signal arrives or ctx is cancelled. It then shuts down within
// the graceful timeout.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.WaitForSignal(ctx)
	return a.Shutdown()
}

// Start runs the startup half of Run.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()
	info := version.Get()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", info.Short()))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		_ = a.Shutdown()
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	for _, d := range a.Components.Describe() {
		a.Logger.Info("component ready", logger.Fields("component", d.Name, "type", d.Type, "details", d.Details))
	}
	a.Logger.Info("application ready", logger.Fields(logger.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}

// WaitForSignal blocks until SIGINT/SIGTERM or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the components in reverse order, then runs the OnStop
// hooks, all within the graceful timeout.
func (a *App[C]) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, h := range slices.Backward(a.onStop) {
		if err := h(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err := stderrors.Join(errs...)
	if err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	a.Logger.Info("application shutdown complete")
	return nil
}
