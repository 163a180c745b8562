package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

type contactRepository struct {
	mu       sync.RWMutex
	contacts map[types.UserID]map[types.ContactKey]*model.Contact
}

func newContactRepository() *contactRepository {
	return &contactRepository{
		contacts: make(map[types.UserID]map[types.ContactKey]*model.Contact),
	}
}

// PutAll upserts contacts keyed by (user, canonical email)
func (r *contactRepository) PutAll(ctx context.Context, userID types.UserID, contacts []*model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byKey, ok := r.contacts[userID]
	if !ok {
		byKey = make(map[types.ContactKey]*model.Contact, len(contacts))
		r.contacts[userID] = byKey
	}
	for _, c := range contacts {
		// Store a deep copy to prevent external modifications
		byKey[c.Email] = c.Clone()
	}

	return nil
}

// Get retrieves a single contact by canonical email
func (r *contactRepository) Get(ctx context.Context, userID types.UserID, key types.ContactKey) (*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[userID][key]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "contact not found",
			goerr.V("user_id", userID), goerr.V("email", key))
	}

	return c.Clone(), nil
}

// List retrieves all contacts of a user, ordered by canonical email
func (r *contactRepository) List(ctx context.Context, userID types.UserID) ([]*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Contact, 0, len(r.contacts[userID]))
	for _, c := range r.contacts[userID] {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })

	return out, nil
}
