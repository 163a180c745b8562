package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

type threadRepository struct {
	mu      sync.RWMutex
	threads map[types.UserID]map[types.ThreadID]*model.Thread
}

func newThreadRepository() *threadRepository {
	return &threadRepository{
		threads: make(map[types.UserID]map[types.ThreadID]*model.Thread),
	}
}

// PutAll upserts threads keyed by (user, thread ID)
func (r *threadRepository) PutAll(ctx context.Context, userID types.UserID, threads []*model.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID, ok := r.threads[userID]
	if !ok {
		byID = make(map[types.ThreadID]*model.Thread, len(threads))
		r.threads[userID] = byID
	}
	for _, th := range threads {
		// Store a deep copy to prevent external modifications
		byID[th.ID] = th.Clone()
	}

	return nil
}

// Get retrieves a single thread by ID
func (r *threadRepository) Get(ctx context.Context, userID types.UserID, id types.ThreadID) (*model.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	th, ok := r.threads[userID][id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "thread not found",
			goerr.V("user_id", userID), goerr.V("thread_id", id))
	}

	return th.Clone(), nil
}

// List retrieves all threads of a user, ordered by last activity descending
func (r *threadRepository) List(ctx context.Context, userID types.UserID) ([]*model.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Thread, 0, len(r.threads[userID]))
	for _, th := range r.threads[userID] {
		out = append(out, th.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}
