// Package config loads service configuration from a YAML file, an optional
// .env file and prefixed environment variables.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("liveview", &cfg, config.WithEnvPrefix("LIVEVIEW"))
//
// With the LIVEVIEW prefix, LIVEVIEW_ENGINE_CHECK_INVARIANTS=true sets
// engine.check_invariants.
package config
