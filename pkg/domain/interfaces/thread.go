package interfaces

import (
	"context"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// ThreadRepository defines the interface for reconstructed thread persistence
type ThreadRepository interface {
	// PutAll upserts threads keyed by (user, thread ID). Member message rows
	// (sequence, response hours) are stored with each thread.
	PutAll(ctx context.Context, userID types.UserID, threads []*model.Thread) error

	// Get retrieves a thread by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, userID types.UserID, id types.ThreadID) (*model.Thread, error)

	// List retrieves all threads of a user.
	List(ctx context.Context, userID types.UserID) ([]*model.Thread, error)
}
