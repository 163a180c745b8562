package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/inboxpulse/inboxpulse/pkg/cli/config"
	"github.com/inboxpulse/inboxpulse/pkg/service/worker"
	"github.com/inboxpulse/inboxpulse/pkg/usecase"
	"github.com/inboxpulse/inboxpulse/pkg/utils/logging"
	"github.com/inboxpulse/inboxpulse/pkg/utils/safe"
)

func cmdWorker() *cli.Command {
	var interval time.Duration
	var repoCfg config.Repository
	var analyticsCfg config.Analytics
	var usersCfg config.Users

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "How often to re-check each user",
			Value:       15 * time.Minute,
			Sources:     cli.EnvVars("INBOXPULSE_WORKER_INTERVAL"),
			Destination: &interval,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, analyticsCfg.Flags()...)
	flags = append(flags, usersCfg.Flags()...)

	return &cli.Command{
		Name:    "worker",
		Aliases: []string{"w"},
		Usage:   "Keep analytics fresh with a periodic background loop",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			users, err := usersCfg.Configure()
			if err != nil {
				return err
			}

			ucOpts, err := analyticsCfg.Configure()
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, ucOpts...)

			targets := make([]worker.Target, len(users))
			for i, user := range users {
				targets[i] = worker.Target{
					UserID:    user.ID,
					UserEmail: user.Email,
					DaysBack:  analyticsCfg.DaysBack(),
				}
			}

			w := worker.NewAnalyticsRefreshWorker(uc, targets, interval)
			if err := w.Start(ctx); err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-sigCtx.Done()

			logging.Default().Info("Shutting down worker")
			w.Stop()

			return nil
		},
	}
}
