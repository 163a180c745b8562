package threader

import (
	"sort"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

const (
	// maxResponseHours discards gaps treated as thread abandonment rather
	// than a real turnaround.
	maxResponseHours = 168.0
	// minResponseHours discards sub-minute gaps, which indicate automated or
	// duplicate delivery rather than a genuine human response.
	minResponseHours = 1.0 / 60.0
)

// Reconstructor groups a user's cached messages into conversation threads.
// Resolution tries header-based signals first and falls back to heuristic
// subject matching; every message ends up in exactly one thread.
type Reconstructor struct {
	userEmail    types.ContactKey
	now          time.Time
	workingHours WorkingHours
	strategies   []Strategy
}

// Option configures a Reconstructor
type Option func(*Reconstructor)

// WithNow fixes the reference time used for abandonment detection.
func WithNow(now time.Time) Option {
	return func(r *Reconstructor) {
		r.now = now
	}
}

// WithWorkingHours replaces the default Mon-Fri 09:00-17:00 window.
func WithWorkingHours(w WorkingHours) Option {
	return func(r *Reconstructor) {
		r.workingHours = w
	}
}

// WithoutSubjectGuard disables the participant-overlap requirement of the
// subject-match fallback, restoring fully permissive subject grouping.
func WithoutSubjectGuard() Option {
	return func(r *Reconstructor) {
		r.strategies = defaultStrategies(false)
	}
}

// New creates a Reconstructor for the given mailbox owner address.
func New(userEmail string, opts ...Option) *Reconstructor {
	r := &Reconstructor{
		userEmail:    types.NewContactKey(userEmail),
		now:          time.Now(),
		workingHours: DefaultWorkingHours(nil),
		strategies:   defaultStrategies(true),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// index is the run-scoped state of one reconstruction pass.
type index struct {
	threadOfMessage  map[types.MessageID]types.ThreadID
	threadOfHint     map[string]types.ThreadID
	threadsOfSubject map[string][]types.ThreadID
	participants     map[types.ThreadID]map[types.ContactKey]struct{}
	members          map[types.ThreadID][]*model.Message
	order            []types.ThreadID
}

func newIndex() *index {
	return &index{
		threadOfMessage:  make(map[types.MessageID]types.ThreadID),
		threadOfHint:     make(map[string]types.ThreadID),
		threadsOfSubject: make(map[string][]types.ThreadID),
		participants:     make(map[types.ThreadID]map[types.ContactKey]struct{}),
		members:          make(map[types.ThreadID][]*model.Message),
	}
}

// assign appends the message to a thread and updates every lookup table.
func (idx *index) assign(id types.ThreadID, msg *model.Message) {
	if _, ok := idx.members[id]; !ok {
		idx.order = append(idx.order, id)
		idx.participants[id] = make(map[types.ContactKey]struct{})
		if key := NormalizeSubject(msg.Subject); key != "" {
			idx.threadsOfSubject[key] = append(idx.threadsOfSubject[key], id)
		}
	}

	idx.members[id] = append(idx.members[id], msg)
	idx.threadOfMessage[msg.ID] = id
	if msg.ThreadIDHint != "" {
		if _, ok := idx.threadOfHint[msg.ThreadIDHint]; !ok {
			idx.threadOfHint[msg.ThreadIDHint] = id
		}
	}
	for _, p := range msg.Participants() {
		idx.participants[id][p] = struct{}{}
	}
}

// Reconstruct partitions the messages into threads. The input is processed in
// chronological order regardless of how the cache returned it, so the same
// message set always yields the same partition.
func (r *Reconstructor) Reconstruct(msgs []*model.Message) []*model.Thread {
	sorted := make([]*model.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})

	idx := newIndex()
	for _, msg := range sorted {
		idx.assign(r.resolve(msg, idx), msg)
	}

	threads := make([]*model.Thread, 0, len(idx.order))
	for _, id := range idx.order {
		threads = append(threads, r.finalize(id, idx.members[id]))
	}
	return threads
}

// resolve tries each strategy in order; a message no strategy claims seeds a
// new thread keyed by its own identifier.
func (r *Reconstructor) resolve(msg *model.Message, idx *index) types.ThreadID {
	for _, strategy := range r.strategies {
		if id, ok := strategy(msg, idx); ok {
			return id
		}
	}
	return types.NewThreadID(msg.ID)
}

// finalize computes member sequence numbers, response times and thread
// metadata. Members arrive chronologically sorted from the single pass.
func (r *Reconstructor) finalize(id types.ThreadID, members []*model.Message) *model.Thread {
	root := members[0]
	last := members[len(members)-1]

	thread := &model.Thread{
		ID:            id,
		RootMessageID: root.ID,
		Subject:       root.Subject,
		LastMessageAt: last.Timestamp,
		LastSender:    types.NewContactKey(last.From),
		UserSentLast:  last.SentBy(r.userEmail.String()),
		Abandoned:     r.now.Sub(last.Timestamp) > model.AbandonThreshold,
		Messages:      make([]model.ThreadMessage, 0, len(members)),
	}

	for i, msg := range members {
		tm := model.ThreadMessage{
			MessageID:          msg.ID,
			From:               types.NewContactKey(msg.From),
			Timestamp:          msg.Timestamp,
			Sequence:           i + 1,
			WithinWorkingHours: r.workingHours.Contains(msg.Timestamp),
		}
		if i > 0 {
			tm.ResponseHours = responseHours(members[i-1].Timestamp, msg.Timestamp)
			if tm.ResponseHours != nil {
				v := r.WorkingResponseHours(members[i-1].Timestamp, msg.Timestamp)
				tm.WorkingResponseHours = &v
			}
		}
		thread.Messages = append(thread.Messages, tm)
		thread.AddParticipants(msg.Participants())
	}

	return thread
}

// responseHours computes the turnaround between consecutive thread messages,
// returning nil for gaps outside the plausible human-response bounds.
func responseHours(prev, curr time.Time) *float64 {
	hours := curr.Sub(prev).Hours()
	if hours > maxResponseHours || hours < minResponseHours {
		return nil
	}
	return &hours
}

// WorkingResponseHours is the working-hours-weighted variant of the response
// time between two timestamps, using the reconstructor's calendar.
func (r *Reconstructor) WorkingResponseHours(prev, curr time.Time) float64 {
	return r.workingHours.HoursBetween(prev, curr)
}
