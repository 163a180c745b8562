package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// UserID identifies the mailbox owner whose communications are analyzed
type UserID string

// Validate checks if the user ID is valid
func (id UserID) Validate() error {
	if id == "" {
		return goerr.New("user ID is required")
	}
	return nil
}

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// MessageID identifies a cached email message (provider message identifier)
type MessageID string

// Validate checks if the message ID is valid
func (id MessageID) Validate() error {
	if id == "" {
		return goerr.New("message ID is required")
	}
	return nil
}

// String returns the string representation of the message ID
func (id MessageID) String() string {
	return string(id)
}

// ThreadID identifies a reconstructed conversation thread. It is derived by
// the reconstruction algorithm and is not necessarily the provider's thread
// identifier.
type ThreadID string

// NewThreadID derives a synthetic thread ID seeded from the message that
// starts the thread.
func NewThreadID(seed MessageID) ThreadID {
	return ThreadID(seed)
}

// Validate checks if the thread ID is valid
func (id ThreadID) Validate() error {
	if id == "" {
		return goerr.New("thread ID is required")
	}
	return nil
}

// String returns the string representation of the thread ID
func (id ThreadID) String() string {
	return string(id)
}

// ContactKey is the deduplication key of a canonical contact: the trimmed,
// lowercased email address. Malformed addresses keep their trimmed-lowered
// raw string so no interaction signal is lost.
type ContactKey string

// NewContactKey canonicalizes a raw address into a contact key.
func NewContactKey(addr string) ContactKey {
	return ContactKey(strings.ToLower(strings.TrimSpace(addr)))
}

// Validate checks if the contact key is valid
func (k ContactKey) Validate() error {
	if k == "" {
		return goerr.New("contact key is required")
	}
	if string(k) != strings.ToLower(strings.TrimSpace(string(k))) {
		return goerr.New("contact key must be trimmed and lowercase", goerr.V("key", string(k)))
	}
	return nil
}

// IsAddress reports whether the key looks like a parseable email address.
// Keys recorded from malformed input may lack an "@"; callers may exclude
// them from display but they stay in the registry.
func (k ContactKey) IsAddress() bool {
	return strings.Contains(string(k), "@")
}

// String returns the string representation of the contact key
func (k ContactKey) String() string {
	return string(k)
}
