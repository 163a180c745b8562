package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/utils/logging"
)

// minRunInterval is the cooldown between runs for one user. A run inside the
// cooldown is skipped with a note instead of recomputing.
const minRunInterval = time.Hour

// DecideRunMode inspects the most recent snapshot to pick the execution mode:
// no snapshot forces a full rebuild, a snapshot younger than the cooldown
// skips, anything else runs incrementally.
func (u *AnalyticsUseCase) DecideRunMode(ctx context.Context, userID types.UserID) (types.RunMode, error) {
	latest, err := u.repo.Metrics().GetLatestSnapshot(ctx, userID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load latest snapshot", goerr.V("user_id", userID))
	}

	switch {
	case latest == nil:
		return types.RunModeFull, nil
	case u.now().Sub(latest.CreatedAt) < minRunInterval:
		return types.RunModeSkip, nil
	default:
		return types.RunModeIncremental, nil
	}
}

// ProcessIfStale applies the incremental policy before running the pipeline.
// A forced full rebuild requested by the caller is honored as-is; otherwise
// the policy only upgrades the first-ever run to a full rebuild, it never
// clears the caller's flag.
func (u *AnalyticsUseCase) ProcessIfStale(ctx context.Context, opts ProcessOptions) *model.Result {
	mode, err := u.DecideRunMode(ctx, opts.UserID)
	if err != nil {
		result := &model.Result{
			UserID: opts.UserID,
			RunID:  uuid.NewString(),
			Mode:   types.RunModeSkip,
		}
		result.AddError(err.Error())
		return result
	}

	switch mode {
	case types.RunModeSkip:
		logging.From(ctx).Info("skipping analytics run",
			"user_id", opts.UserID, "reason", "too recent")
		result := &model.Result{
			UserID:  opts.UserID,
			RunID:   uuid.NewString(),
			Mode:    types.RunModeSkip,
			Success: true,
		}
		result.AddNote("too recent")
		return result

	case types.RunModeFull:
		opts.ForceFullRebuild = true
	}

	return u.Process(ctx, opts)
}
