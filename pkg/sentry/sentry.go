package sentry

import (
	"github.com/getsentry/sentry-go"
)

// Config for embedding into services' configurations
type Config struct {
	DSN string `yaml:"dsn"`
	Env string `yaml:"environment"`
}

// ConfigureGlobal initializes the global sentry hub used by xerror.
// Nil config or an empty DSN keeps sentry disabled.
func ConfigureGlobal(config *Config, release string) error {
	if config == nil || len(config.DSN) == 0 {
		return nil
	}

	cfg := sentry.ClientOptions{
		Dsn:              config.DSN,
		AttachStacktrace: true,
		SampleRate:       1.0,
		Release:          release,
		Environment:      config.Env,
		Integrations: func(integrations []sentry.Integration) []sentry.Integration {
			use := make([]sentry.Integration, 0, len(integrations))
			for _, in := range integrations {
				// exclude the "Modules" integration from defaults
				if in.Name() == "Modules" {
					continue
				}
				use = append(use, in)
			}
			return use
		},
	}

	return sentry.Init(cfg)
}
