package collection

import (
	"github.com/kbukum/liveview/config"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/observability"
)

// TieBreak decides the order of items whose sort keys compare equal.
type TieBreak int

const (
	// TieBreakDefault uses the source's default, which is TieBreakStable
	// unless configured otherwise.
	TieBreakDefault TieBreak = iota
	// TieBreakStable keeps earlier arrivals first.
	TieBreakStable
	// TieBreakLatestFirst puts later arrivals first.
	TieBreakLatestFirst
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakDefault:
		return "default"
	case TieBreakStable:
		return "stable"
	case TieBreakLatestFirst:
		return "latest-first"
	default:
		return "unknown"
	}
}

type options struct {
	name         string
	log          *logger.Logger
	inst         *observability.Instruments
	onError      func(error)
	synchronized bool
	checks       bool
	tieBreak     TieBreak
	identity     any
}

// Option configures a Source and the pipeline built on it.
type Option func(*options)

// WithName names the source in logs and telemetry.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithInstruments enables telemetry.
func WithInstruments(inst *observability.Instruments) Option {
	return func(o *options) { o.inst = inst }
}

// WithErrorHandler receives errors that cannot be returned to a caller:
// aggregated subscriber failures and callback contract violations. The
// default handler logs them.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithSynchronization makes the pipeline safe for use from several
// goroutines.
func WithSynchronization() Option {
	return func(o *options) { o.synchronized = true }
}

// WithInvariantChecks enables the callback determinism checks.
func WithInvariantChecks() Option {
	return func(o *options) { o.checks = true }
}

// WithTieBreak sets the tie-break used by sort stages that do not choose
// one.
func WithTieBreak(tb TieBreak) Option {
	return func(o *options) { o.tieBreak = tb }
}

// WithIdentity sets the identity used by Source.Remove and Source.IndexOf.
// The default identity is the item itself, compared with ==, and is only
// available for comparable item types. T must match the Source's item
// type; a mismatched function is logged and ignored.
func WithIdentity[T any](fn func(T) any) Option {
	return func(o *options) { o.identity = fn }
}

// WithEngineConfig applies an engine configuration section.
func WithEngineConfig(cfg config.Engine) Option {
	return func(o *options) {
		o.synchronized = cfg.Synchronized
		o.checks = cfg.CheckInvariants
		if cfg.Stable() {
			o.tieBreak = TieBreakStable
		} else {
			o.tieBreak = TieBreakLatestFirst
		}
	}
}
