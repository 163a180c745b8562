package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

type metricsRepository struct {
	mu        sync.RWMutex
	snapshots map[types.UserID]map[string]*model.MetricsSnapshot
}

func newMetricsRepository() *metricsRepository {
	return &metricsRepository{
		snapshots: make(map[types.UserID]map[string]*model.MetricsSnapshot),
	}
}

// PutSnapshot upserts a snapshot keyed by (user, date)
func (r *metricsRepository) PutSnapshot(ctx context.Context, snapshot *model.MetricsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDate, ok := r.snapshots[snapshot.UserID]
	if !ok {
		byDate = make(map[string]*model.MetricsSnapshot)
		r.snapshots[snapshot.UserID] = byDate
	}
	byDate[snapshot.Date] = snapshot.Clone()

	return nil
}

// GetSnapshot retrieves the snapshot for a specific date
func (r *metricsRepository) GetSnapshot(ctx context.Context, userID types.UserID, date string) (*model.MetricsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[userID][date]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "snapshot not found",
			goerr.V("user_id", userID), goerr.V("date", date))
	}

	return s.Clone(), nil
}

// GetLatestSnapshot retrieves the most recently created snapshot of a user.
// Returns nil, nil when the user has none yet.
func (r *metricsRepository) GetLatestSnapshot(ctx context.Context, userID types.UserID) (*model.MetricsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.MetricsSnapshot
	for _, s := range r.snapshots[userID] {
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}

	return latest.Clone(), nil
}
