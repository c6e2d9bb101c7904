package bootstrap

import (
	"github.com/kbukum/liveview/config"
)

// Config is the constraint for application configuration types. Any
// struct embedding config.ServiceConfig satisfies it through promoted
// methods, and may override ApplyDefaults and Validate to cover its own
// sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
