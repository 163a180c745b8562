package interfaces

import (
	"context"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// MetricsRepository defines the interface for daily metrics snapshots
type MetricsRepository interface {
	// PutSnapshot upserts a snapshot keyed by (user, date), overwriting
	// same-day values on rerun.
	PutSnapshot(ctx context.Context, snapshot *model.MetricsSnapshot) error

	// GetSnapshot retrieves the snapshot for a date. Returns ErrNotFound if absent.
	GetSnapshot(ctx context.Context, userID types.UserID, date string) (*model.MetricsSnapshot, error)

	// GetLatestSnapshot retrieves the most recently created snapshot of a
	// user. Returns nil, nil when the user has no snapshot yet.
	GetLatestSnapshot(ctx context.Context, userID types.UserID) (*model.MetricsSnapshot, error)
}
