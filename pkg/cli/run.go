package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/inboxpulse/inboxpulse/pkg/cli/config"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/usecase"
	"github.com/inboxpulse/inboxpulse/pkg/utils/errutil"
	"github.com/inboxpulse/inboxpulse/pkg/utils/safe"
)

func cmdRun() *cli.Command {
	var fullRebuild bool
	var concurrency int
	var repoCfg config.Repository
	var analyticsCfg config.Analytics
	var usersCfg config.Users

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "full-rebuild",
			Usage:       "Recompute all state instead of loading prior runs",
			Sources:     cli.EnvVars("INBOXPULSE_FULL_REBUILD"),
			Destination: &fullRebuild,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "How many users to process in parallel",
			Value:       4,
			Sources:     cli.EnvVars("INBOXPULSE_CONCURRENCY"),
			Destination: &concurrency,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, analyticsCfg.Flags()...)
	flags = append(flags, usersCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run one analytics pass for the given users",
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

			if concurrency < 1 {
				concurrency = 1
			}

			// Each user's run is independent; fan out with a bounded pool.
			var mu sync.Mutex
			results := make([]*model.Result, 0, len(users))

			eg, egCtx := errgroup.WithContext(ctx)
			eg.SetLimit(concurrency)
			for _, user := range users {
				eg.Go(func() error {
					result := uc.Analytics.Process(egCtx, usecase.ProcessOptions{
						UserID:           user.ID,
						UserEmail:        user.Email,
						DaysBack:         analyticsCfg.DaysBack(),
						ForceFullRebuild: fullRebuild,
					})
					mu.Lock()
					results = append(results, result)
					mu.Unlock()
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				errutil.Handle(ctx, err, "analytics run aborted")
				return err
			}

			printSummary(results)

			for _, r := range results {
				if !r.Success {
					return goerr.New("one or more runs failed",
						goerr.V("failed", countFailed(results)), goerr.V("total", len(results)))
				}
			}
			return nil
		},
	}
}

func countFailed(results []*model.Result) int {
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	return failed
}

func printSummary(results []*model.Result) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, r := range results {
		status := ok("OK")
		if !r.Success {
			status = bad("FAILED")
		}
		fmt.Fprintf(os.Stdout, "%-8s %-24s %s threads=%d contacts=%d events=%d %s\n",
			status, r.UserID, r.Mode, r.ThreadsProcessed, r.ContactsProcessed,
			r.TimelineEvents, dim(fmt.Sprintf("%dms", r.ElapsedMillis)))

		for _, note := range r.Notes {
			fmt.Fprintf(os.Stdout, "         %s\n", dim(note))
		}
		for _, msg := range r.Errors {
			fmt.Fprintf(os.Stdout, "         %s\n", bad(strings.TrimSpace(msg)))
		}
	}
}
