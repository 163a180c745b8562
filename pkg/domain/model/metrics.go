package model

import (
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// MetricsDateFormat is the calendar-day key of a snapshot.
const MetricsDateFormat = "2006-01-02"

// MetricsSnapshot is one row per user per calendar day, overwritten on rerun
// for the same day.
type MetricsSnapshot struct {
	UserID types.UserID
	// Date is the snapshot day formatted as MetricsDateFormat.
	Date string
	// ThreadDecayRate is the fraction of threads where the user sent the
	// final message.
	ThreadDecayRate float64
	ContextSwitches int
	// LoadByHour is a cognitive-load histogram indexed by hour of day.
	LoadByHour [24]float64
	// TimeByContext breaks down time (minutes, or event counts where
	// durations are unavailable) per context classification.
	TimeByContext map[string]float64
	CreatedAt     time.Time
}

// Clone returns a copy to prevent external modification of stored snapshots.
func (s *MetricsSnapshot) Clone() *MetricsSnapshot {
	clone := *s
	clone.TimeByContext = make(map[string]float64, len(s.TimeByContext))
	for k, v := range s.TimeByContext {
		clone.TimeByContext[k] = v
	}
	return &clone
}
