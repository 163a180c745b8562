package model

import (
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// RawMessage is one record from the message cache. The cache is owned by the
// ingestion collaborator; records are immutable and read-only to this core.
type RawMessage struct {
	ID                types.MessageID
	ThreadIDHint      string
	InternalTimestamp time.Time
	// RawHeaderPayload is the RFC 5322 header block as stored by ingestion.
	// All access to it goes through the mailparse boundary.
	RawHeaderPayload []byte
}

// Message is the fully-typed view of a cached message. Every stage downstream
// of header extraction operates only on this type, never on the raw payload.
type Message struct {
	ID           types.MessageID
	ThreadIDHint string
	Subject      string
	From         string
	// FromName is the sender's display name when the From header carried one.
	FromName string
	To       []string
	Cc           []string
	Timestamp    time.Time
	InReplyTo    types.MessageID
	// References holds the References header identifiers in header order
	// (oldest first).
	References []types.MessageID
}

// Participants returns the union of from/to/cc addresses of the message,
// canonicalized to contact keys.
func (m *Message) Participants() []types.ContactKey {
	seen := make(map[types.ContactKey]struct{}, len(m.To)+len(m.Cc)+1)
	keys := make([]types.ContactKey, 0, len(m.To)+len(m.Cc)+1)

	add := func(addr string) {
		if addr == "" {
			return
		}
		key := types.NewContactKey(addr)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	add(m.From)
	for _, addr := range m.To {
		add(addr)
	}
	for _, addr := range m.Cc {
		add(addr)
	}
	return keys
}

// SentBy reports whether the message was sent from the given address,
// compared case-insensitively.
func (m *Message) SentBy(addr string) bool {
	return types.NewContactKey(m.From) == types.NewContactKey(addr)
}
