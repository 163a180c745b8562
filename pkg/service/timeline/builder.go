package timeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// Builder merges email and calendar signals into one chronologically ordered
// timeline per user and derives context-switch and cognitive-load aggregates
// from it. A Builder is scoped to a single run: construct, extend, save,
// discard.
type Builder struct {
	userID     types.UserID
	userEmail  string
	repo       interfaces.TimelineRepository
	classifier *Classifier

	events []model.TimelineEvent
	// pending marks the index where this run's additions start. Save persists
	// only events at or past it; history is never rewritten.
	pending int
	// seen indexes timeline events by source record so overlapping fetch
	// windows never append the same message or meeting twice.
	seen map[string]struct{}
}

type Option func(*Builder)

func WithRules(rules []ContextRule) Option {
	return func(b *Builder) {
		b.classifier = NewClassifier(b.userEmail, rules)
	}
}

func New(repo interfaces.TimelineRepository, userID types.UserID, userEmail string, opts ...Option) *Builder {
	b := &Builder{
		userID:     userID,
		userEmail:  userEmail,
		repo:       repo,
		classifier: NewClassifier(userEmail, nil),
		seen:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load hydrates the builder with the user's persisted timeline. Incremental
// runs call this before adding new events so aggregates span the full window.
func (b *Builder) Load(ctx context.Context) error {
	events, err := b.repo.List(ctx, b.userID, time.Time{})
	if err != nil {
		return goerr.Wrap(err, "failed to load timeline", goerr.V("user_id", b.userID))
	}
	b.events = events
	b.pending = len(b.events)
	for i := range b.events {
		if src := b.events[i].SourceID; src != "" {
			b.seen[src] = struct{}{}
		}
	}
	return nil
}

// HasSource reports whether a timeline event derived from the given cache
// record is already present, loaded or added during this run.
func (b *Builder) HasSource(sourceID string) bool {
	_, ok := b.seen[sourceID]
	return ok
}

// AddEmailEvents appends one event per message not already on the timeline,
// categorized by direction and labeled with a context classification.
// Messages whose events were persisted by an earlier run are skipped.
func (b *Builder) AddEmailEvents(msgs []*model.Message) int {
	added := 0
	for _, msg := range msgs {
		if b.HasSource(string(msg.ID)) {
			continue
		}
		sent := msg.SentBy(b.userEmail)
		category := types.EventCategoryEmailReceived
		if sent {
			category = types.EventCategoryEmailSent
		}
		b.events = append(b.events, model.TimelineEvent{
			ID:        uuid.NewString(),
			UserID:    b.userID,
			Timestamp: msg.Timestamp,
			Category:  category,
			Context:   b.classifier.ClassifyMessage(msg, sent),
			SourceID:  string(msg.ID),
		})
		b.seen[string(msg.ID)] = struct{}{}
		added++
	}
	b.sortEvents()
	return added
}

// AddCalendarEvents appends meeting events with explicit durations, skipping
// entries already on the timeline.
func (b *Builder) AddCalendarEvents(events []model.CalendarEvent) int {
	added := 0
	for i := range events {
		ev := &events[i]
		if ev.ID != "" && b.HasSource(ev.ID) {
			continue
		}
		b.events = append(b.events, model.TimelineEvent{
			ID:              uuid.NewString(),
			UserID:          b.userID,
			Timestamp:       ev.Start,
			Category:        types.EventCategoryMeeting,
			Context:         b.classifier.ClassifyCalendar(ev),
			DurationMinutes: ev.DurationMinutes(),
			SourceID:        ev.ID,
		})
		if ev.ID != "" {
			b.seen[ev.ID] = struct{}{}
		}
		added++
	}
	b.sortEvents()
	return added
}

// sortEvents keeps this run's additions in time order without reordering the
// already-persisted prefix.
func (b *Builder) sortEvents() {
	fresh := b.events[b.pending:]
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Timestamp.Before(fresh[j].Timestamp)
	})
}

// Save appends the events added during this run. Previously loaded history is
// left untouched.
func (b *Builder) Save(ctx context.Context) error {
	fresh := b.events[b.pending:]
	if len(fresh) == 0 {
		return nil
	}
	if err := b.repo.Append(ctx, b.userID, fresh); err != nil {
		return goerr.Wrap(err, "failed to save timeline",
			goerr.V("user_id", b.userID),
			goerr.V("count", len(fresh)),
		)
	}
	b.pending = len(b.events)
	return nil
}

// Events returns the full loaded-plus-added timeline in time order.
func (b *Builder) Events() []model.TimelineEvent {
	out := make([]model.TimelineEvent, len(b.events))
	copy(out, b.events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// PendingCount reports how many events this run has added but not yet saved.
func (b *Builder) PendingCount() int {
	return len(b.events) - b.pending
}

// ContextSwitches counts transitions between differently-labeled consecutive
// events within [start, end). The event immediately preceding the interval
// seeds the comparison so a switch on the boundary is still counted.
func (b *Builder) ContextSwitches(start, end time.Time) int {
	ordered := b.Events()

	prev := ""
	switches := 0
	for i := range ordered {
		ev := &ordered[i]
		if !ev.Timestamp.Before(end) {
			break
		}
		if ev.Timestamp.Before(start) {
			prev = ev.Context
			continue
		}
		if prev != "" && ev.Context != prev {
			switches++
		}
		prev = ev.Context
	}
	return switches
}

// CognitiveLoadByHour buckets the weighted event count by hour of day for the
// given calendar date.
func (b *Builder) CognitiveLoadByHour(date time.Time) [24]float64 {
	var load [24]float64
	y, m, d := date.Date()
	for i := range b.events {
		ev := &b.events[i]
		ey, em, ed := ev.Timestamp.Date()
		if ey != y || em != m || ed != d {
			continue
		}
		load[ev.Timestamp.Hour()] += ev.LoadWeight()
	}
	return load
}

// TimeByContext sums minutes per context label across the loaded window.
// Email events carry no duration, so they contribute their count instead.
func (b *Builder) TimeByContext() map[string]float64 {
	out := map[string]float64{}
	for i := range b.events {
		ev := &b.events[i]
		if ev.DurationMinutes > 0 {
			out[ev.Context] += ev.DurationMinutes
		} else {
			out[ev.Context]++
		}
	}
	return out
}
