package interfaces

import (
	"context"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// TimelineRepository defines the interface for timeline event persistence.
// The timeline is append-only per user; historical events outside the
// processed window are never deleted.
type TimelineRepository interface {
	// Append stores new events for a user.
	Append(ctx context.Context, userID types.UserID, events []model.TimelineEvent) error

	// List retrieves events of a user with timestamp >= since, ordered by
	// timestamp ascending. A zero since loads the whole timeline.
	List(ctx context.Context, userID types.UserID, since time.Time) ([]model.TimelineEvent, error)
}
