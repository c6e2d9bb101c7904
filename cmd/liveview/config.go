package main

import (
	"fmt"

	"github.com/kbukum/liveview/config"
	"github.com/kbukum/liveview/internal/memberapi"
	"github.com/kbukum/liveview/internal/server"
)

// AppConfig is the configuration of the liveview binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server  server.Config             `yaml:"server" mapstructure:"server"`
	Members []memberapi.MemberRequest `yaml:"members" mapstructure:"members"`
}

// ApplyDefaults applies defaults to every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}
