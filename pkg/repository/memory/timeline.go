package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

type timelineRepository struct {
	mu     sync.RWMutex
	events map[types.UserID][]model.TimelineEvent
}

func newTimelineRepository() *timelineRepository {
	return &timelineRepository{
		events: make(map[types.UserID][]model.TimelineEvent),
	}
}

// Append stores new events for a user. Existing events are never modified.
func (r *timelineRepository) Append(ctx context.Context, userID types.UserID, events []model.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[userID] = append(r.events[userID], events...)
	return nil
}

// List retrieves events with timestamp >= since, ordered ascending. A zero
// since returns the whole timeline.
func (r *timelineRepository) List(ctx context.Context, userID types.UserID, since time.Time) ([]model.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.TimelineEvent, 0, len(r.events[userID]))
	for _, ev := range r.events[userID] {
		if !since.IsZero() && ev.Timestamp.Before(since) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out, nil
}
