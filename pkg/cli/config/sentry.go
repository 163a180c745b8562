package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/inboxpulse/inboxpulse/pkg/utils/logging"
)

// Sentry holds CLI flags for error reporting. An empty DSN disables
// reporting entirely.
type Sentry struct {
	dsn string
	env string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (empty disables error reporting)",
			Category:    "Error reporting",
			Sources:     cli.EnvVars("INBOXPULSE_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Error reporting",
			Sources:     cli.EnvVars("INBOXPULSE_SENTRY_ENV"),
			Destination: &x.env,
		},
	}
}

// Configure initializes the Sentry client. The returned closer flushes
// buffered events on shutdown.
func (x *Sentry) Configure(version string) (func(), error) {
	if x.dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.env,
		Release:     version,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	logging.Default().Info("Sentry error reporting enabled", "env", x.env)

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
