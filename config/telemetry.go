package config

import "time"

// Telemetry configures the OpenTelemetry exporters. A zero SampleRate
// samples every mutation.
type Telemetry struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults applies default values to the telemetry configuration.
func (t *Telemetry) ApplyDefaults() {
	if t.Endpoint == "" && t.Enabled {
		t.Endpoint = "localhost:4318"
	}
	if t.SampleRate == 0 {
		t.SampleRate = 1
	}
	if t.Interval == 0 {
		t.Interval = 15 * time.Second
	}
}
