package model

import (
	"sort"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// AbandonThreshold is the inactivity gap after which a thread counts as
// abandoned. The same bound discards implausibly long response times.
const AbandonThreshold = 168 * time.Hour

// Thread is a reconstructed conversation. Every cached message belongs to
// exactly one thread; threads are recomputed each run from the message window
// under consideration, not patched in place.
type Thread struct {
	ID            types.ThreadID
	RootMessageID types.MessageID
	Subject       string
	Participants  []types.ContactKey
	Messages      []ThreadMessage
	LastMessageAt time.Time
	LastSender    types.ContactKey
	UserSentLast  bool
	Abandoned     bool
}

// ThreadMessage is the position of one message inside its thread.
type ThreadMessage struct {
	MessageID types.MessageID
	From      types.ContactKey
	Timestamp time.Time
	// Sequence is 1-based and chronological within the thread.
	Sequence int
	// ResponseHours is the turnaround from the previous message. Nil when the
	// gap exceeds AbandonThreshold (abandonment, not a turnaround) or falls
	// under one minute (automated or duplicate delivery).
	ResponseHours *float64
	// WorkingResponseHours weighs the same turnaround by the working-hours
	// calendar, so overnight and weekend gaps cost nothing. Nil whenever
	// ResponseHours is nil.
	WorkingResponseHours *float64
	// WithinWorkingHours reports whether the message arrived Mon-Fri 09:00-17:00.
	WithinWorkingHours bool
}

// AddParticipants merges the given keys into the participant set.
func (t *Thread) AddParticipants(keys []types.ContactKey) {
	existing := make(map[types.ContactKey]struct{}, len(t.Participants))
	for _, p := range t.Participants {
		existing[p] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := existing[k]; ok {
			continue
		}
		existing[k] = struct{}{}
		t.Participants = append(t.Participants, k)
	}
	sort.Slice(t.Participants, func(i, j int) bool {
		return t.Participants[i] < t.Participants[j]
	})
}

// HasParticipant reports whether the key belongs to the thread's participant set.
func (t *Thread) HasParticipant(key types.ContactKey) bool {
	for _, p := range t.Participants {
		if p == key {
			return true
		}
	}
	return false
}

// MessageCount returns the number of member messages.
func (t *Thread) MessageCount() int {
	return len(t.Messages)
}

// Clone returns a deep copy to prevent external modification of stored threads.
func (t *Thread) Clone() *Thread {
	clone := *t
	clone.Participants = append([]types.ContactKey(nil), t.Participants...)
	clone.Messages = make([]ThreadMessage, len(t.Messages))
	for i, m := range t.Messages {
		clone.Messages[i] = m
		if m.ResponseHours != nil {
			v := *m.ResponseHours
			clone.Messages[i].ResponseHours = &v
		}
		if m.WorkingResponseHours != nil {
			v := *m.WorkingResponseHours
			clone.Messages[i].WorkingResponseHours = &v
		}
	}
	return &clone
}
