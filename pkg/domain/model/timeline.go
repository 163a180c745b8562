package model

import (
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// TimelineEvent is one dated, categorized interaction unit. The timeline is
// append-only per user: runs extend it, nothing edits history.
type TimelineEvent struct {
	ID        string
	UserID    types.UserID
	Timestamp time.Time
	Category  types.EventCategory
	// SourceID is the cache record (message ID or calendar event ID) this
	// event was derived from. Reruns over an overlapping fetch window use it
	// to skip records already on the timeline.
	SourceID string
	// Context is a coarse classification (e.g. "internal", "external", or a
	// configured label) used for context-switch and time-by-context metrics.
	Context string
	// DurationMinutes is zero for email-derived events; time-by-context then
	// falls back to event counts for them.
	DurationMinutes float64
	// Weight scales the event's contribution to cognitive load. Defaults to 1.
	Weight float64
}

// LoadWeight returns the event's cognitive-load contribution.
func (e *TimelineEvent) LoadWeight() float64 {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}

// CalendarEvent is an externally supplied calendar entry, merged into the
// timeline alongside email events.
type CalendarEvent struct {
	ID      string
	Title   string
	Start   time.Time
	End     time.Time
	Context string
}

// DurationMinutes returns the event length, never negative.
func (e *CalendarEvent) DurationMinutes() float64 {
	d := e.End.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return d.Minutes()
}
