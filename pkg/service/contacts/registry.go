package contacts

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
	"github.com/inboxpulse/inboxpulse/pkg/service/mailparse"
)

// Registry maintains one canonical contact per distinct email address,
// case-insensitively. A registry is run-scoped: the orchestrator creates a
// fresh one per invocation, hydrates it for incremental runs, and saves it
// back at the end.
type Registry struct {
	repo     interfaces.ContactRepository
	contacts map[types.ContactKey]*model.Contact
	clock    func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithClock replaces the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// New creates an empty run-scoped contact registry.
func New(repo interfaces.ContactRepository, opts ...Option) *Registry {
	r := &Registry{
		repo:     repo,
		contacts: make(map[types.ContactKey]*model.Contact),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add records one sighting of a raw `"Display Name <addr@example.com>"` or
// bare-address string. Malformed addresses (no parseable address part) are
// still recorded under their raw string so no interaction signal is lost.
func (r *Registry) Add(raw string) {
	name, addr := mailparse.ParseAddress(raw)
	r.AddAddress(addr, name)
}

// AddAddress records one sighting of an already-split address. Empty
// addresses are ignored.
func (r *Registry) AddAddress(addr, displayName string) {
	key := types.NewContactKey(addr)
	if key == "" {
		return
	}

	if existing, ok := r.contacts[key]; ok {
		existing.Sighted(displayName)
		existing.UpdatedAt = r.clock()
		return
	}

	r.contacts[key] = &model.Contact{
		Email:            key,
		DisplayName:      displayName,
		InteractionCount: 1,
		UpdatedAt:        r.clock(),
	}
}

// Load hydrates the registry from storage. Used before incremental runs so
// interaction counts keep accumulating across the lifetime of the store.
func (r *Registry) Load(ctx context.Context, userID types.UserID) error {
	stored, err := r.repo.List(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "failed to load contacts", goerr.V("user_id", userID))
	}

	for _, c := range stored {
		r.contacts[c.Email] = c.Clone()
	}
	return nil
}

// SaveAll upserts the full registry back to storage, keyed by
// (user, canonical email).
func (r *Registry) SaveAll(ctx context.Context, userID types.UserID) error {
	if len(r.contacts) == 0 {
		return nil
	}
	if err := r.repo.PutAll(ctx, userID, r.All()); err != nil {
		return goerr.Wrap(err, "failed to save contacts", goerr.V("user_id", userID))
	}
	return nil
}

// Get returns the contact for a canonical key, or nil.
func (r *Registry) Get(key types.ContactKey) *model.Contact {
	c, ok := r.contacts[key]
	if !ok {
		return nil
	}
	return c.Clone()
}

// Count returns the number of distinct contacts in the registry.
func (r *Registry) Count() int {
	return len(r.contacts)
}

// All returns the registry contents ordered by canonical email.
func (r *Registry) All() []*model.Contact {
	result := make([]*model.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		result = append(result, c.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Email < result[j].Email
	})
	return result
}
