package interfaces

import (
	"context"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// ContactRepository defines the interface for canonical contact persistence
type ContactRepository interface {
	// PutAll upserts contacts keyed by (user, canonical email).
	PutAll(ctx context.Context, userID types.UserID, contacts []*model.Contact) error

	// Get retrieves a contact by canonical email. Returns ErrNotFound if absent.
	Get(ctx context.Context, userID types.UserID, key types.ContactKey) (*model.Contact, error)

	// List retrieves all contacts of a user.
	List(ctx context.Context, userID types.UserID) ([]*model.Contact, error)
}
