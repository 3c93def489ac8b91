package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	OAuthConfig
	ProviderConfig
	SessionConfig
	DisplayConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

// Settings is the concrete Config. Tests build it directly.
type Settings struct {
	EnvVars
	OAuth
	Provider
	Session
	Display
}

// New reads the process environment once. The returned value is never
// mutated afterwards.
func New() (Config, error) {
	var c Settings
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	if err := c.Display.validate(); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	return c, nil
}

var _ Config = Settings{}
