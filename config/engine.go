package config

// Engine configures the collection engine.
type Engine struct {
	// StableTieBreak orders equal sort keys by arrival, earlier first. When
	// false, later arrivals come first.
	StableTieBreak *bool `yaml:"stable_tie_break" mapstructure:"stable_tie_break"`
	// CheckInvariants enables the callback determinism checks.
	CheckInvariants bool `yaml:"check_invariants" mapstructure:"check_invariants"`
	// Synchronized makes sources safe for use from several goroutines.
	Synchronized bool `yaml:"synchronized" mapstructure:"synchronized"`
}

// ApplyDefaults applies default values to the engine configuration.
func (e *Engine) ApplyDefaults() {
	if e.StableTieBreak == nil {
		stable := true
		e.StableTieBreak = &stable
	}
}

// Stable reports the effective tie-break setting.
func (e Engine) Stable() bool {
	return e.StableTieBreak == nil || *e.StableTieBreak
}
