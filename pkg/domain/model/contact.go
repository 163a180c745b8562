package model

import (
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// Contact is a canonical identity deduplicated by lowercase, trimmed email
// address. Contacts persist across runs; a run only creates or updates them,
// never deletes.
type Contact struct {
	Email            types.ContactKey
	DisplayName      string
	InteractionCount int
	UpdatedAt        time.Time
}

// Sighted records one more interaction with the contact and backfills the
// display name if it was previously unknown.
func (c *Contact) Sighted(displayName string) {
	c.InteractionCount++
	if c.DisplayName == "" && displayName != "" {
		c.DisplayName = displayName
	}
}

// Clone returns a copy to prevent external modification of stored contacts.
func (c *Contact) Clone() *Contact {
	clone := *c
	return &clone
}
