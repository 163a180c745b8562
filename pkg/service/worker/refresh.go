package worker

import (
	"context"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/usecase"
	"github.com/inboxpulse/inboxpulse/pkg/utils/async"
	"github.com/inboxpulse/inboxpulse/pkg/utils/logging"
)

// Target is one user whose analytics the worker keeps fresh.
type Target struct {
	UserID    types.UserID
	UserEmail string
	DaysBack  int
}

// AnalyticsRefreshWorker periodically re-runs the analytics pipeline for a
// fixed set of users. The incremental policy inside ProcessIfStale decides
// per user whether any work actually happens.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type AnalyticsRefreshWorker struct {
	uc       *usecase.UseCases
	targets  []Target
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewAnalyticsRefreshWorker creates a worker over the given user targets
func NewAnalyticsRefreshWorker(uc *usecase.UseCases, targets []Target, interval time.Duration) *AnalyticsRefreshWorker {
	return &AnalyticsRefreshWorker{
		uc:       uc,
		targets:  targets,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop without blocking startup
func (w *AnalyticsRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("analytics refresh worker starting",
		"interval", w.interval.String(),
		"targets", len(w.targets))

	async.Dispatch(ctx, func(ctx context.Context) error {
		w.run(ctx)
		return nil
	})

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *AnalyticsRefreshWorker) Stop() {
	logging.Default().Info("analytics refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("analytics refresh worker stopped")
}

func (w *AnalyticsRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.refreshAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refreshAll(ctx)

		case <-w.stopCh:
			logging.Default().Info("analytics refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("analytics refresh worker context cancelled")
			return
		}
	}
}

// refreshAll runs one policy-gated pass per target. Runs are sequential:
// one user's failure is logged and the loop moves on.
func (w *AnalyticsRefreshWorker) refreshAll(ctx context.Context) {
	for _, target := range w.targets {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		result := w.uc.Analytics.ProcessIfStale(ctx, usecase.ProcessOptions{
			UserID:    target.UserID,
			UserEmail: target.UserEmail,
			DaysBack:  target.DaysBack,
		})

		if !result.Success {
			logging.Default().Error("analytics refresh failed (will retry next interval)",
				"user_id", target.UserID,
				"run_id", result.RunID,
				"errors", result.Errors)
			continue
		}

		logging.Default().Info("analytics refresh completed",
			"user_id", target.UserID,
			"run_id", result.RunID,
			"mode", result.Mode,
			"threads", result.ThreadsProcessed,
			"elapsed_ms", result.ElapsedMillis)
	}
}
