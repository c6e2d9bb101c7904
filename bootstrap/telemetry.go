package bootstrap

import (
	"context"
	"fmt"

	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/observability"
)

const instrumentationName = "github.com/kbukum/liveview"

// Telemetry installs the OTLP meter and tracer providers described by the
// Telemetry config section and returns the engine instruments. It returns
// nil instruments when telemetry is disabled. The providers are flushed
// and shut down by Shutdown.
func (a *App[C]) Telemetry(ctx context.Context) (*observability.Instruments, error) {
	base := a.Cfg.GetServiceConfig()
	tc := base.Telemetry
	if !tc.Enabled {
		a.Logger.Debug("telemetry disabled")
		return nil, nil
	}

	id := observability.Identity{
		Service:     base.Name,
		Version:     base.Version,
		Environment: base.Environment,
		Checks:      base.Engine.CheckInvariants,
	}
	mp, err := observability.InitMeter(ctx, tc, id)
	if err != nil {
		return nil, fmt.Errorf("init meter: %w", err)
	}
	a.OnStop(mp.Shutdown)

	tp, err := observability.InitTracer(ctx, tc, id)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.OnStop(tp.Shutdown)

	inst, err := observability.NewInstruments(observability.Meter(instrumentationName), observability.Tracer(instrumentationName))
	if err != nil {
		return nil, err
	}
	a.Logger.Info("telemetry enabled", logger.Fields("endpoint", tc.Endpoint))
	return inst, nil
}
