package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

type messageCache struct {
	mu       sync.RWMutex
	messages map[types.UserID][]*model.RawMessage
}

func newMessageCache() *messageCache {
	return &messageCache{
		messages: make(map[types.UserID][]*model.RawMessage),
	}
}

// FetchWindow returns the cached raw messages within the days-back bound,
// ordered newest-first. A non-positive daysBack returns everything.
func (r *messageCache) FetchWindow(ctx context.Context, userID types.UserID, daysBack int) ([]*model.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cutoff time.Time
	if daysBack > 0 {
		cutoff = time.Now().AddDate(0, 0, -daysBack)
	}

	var out []*model.RawMessage
	for _, msg := range r.messages[userID] {
		if !cutoff.IsZero() && msg.InternalTimestamp.Before(cutoff) {
			continue
		}
		msgCopy := *msg
		out = append(out, &msgCopy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InternalTimestamp.After(out[j].InternalTimestamp)
	})

	return out, nil
}

type calendarSource struct {
	mu     sync.RWMutex
	events map[types.UserID][]model.CalendarEvent
}

func newCalendarSource() *calendarSource {
	return &calendarSource{
		events: make(map[types.UserID][]model.CalendarEvent),
	}
}

// FetchWindow returns the ingested calendar events within the days-back
// bound. A non-positive daysBack returns everything.
func (r *calendarSource) FetchWindow(ctx context.Context, userID types.UserID, daysBack int) ([]model.CalendarEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cutoff time.Time
	if daysBack > 0 {
		cutoff = time.Now().AddDate(0, 0, -daysBack)
	}

	var out []model.CalendarEvent
	for _, ev := range r.events[userID] {
		if !cutoff.IsZero() && ev.Start.Before(cutoff) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	return out, nil
}

// SeedMessages loads raw message records into the cache. Intended for tests
// and local runs against the memory backend.
func (m *Memory) SeedMessages(userID types.UserID, msgs ...*model.RawMessage) {
	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()

	for _, msg := range msgs {
		msgCopy := *msg
		m.cache.messages[userID] = append(m.cache.messages[userID], &msgCopy)
	}
}

// SeedCalendarEvents loads calendar events into the source.
func (m *Memory) SeedCalendarEvents(userID types.UserID, events ...model.CalendarEvent) {
	m.calendar.mu.Lock()
	defer m.calendar.mu.Unlock()

	m.calendar.events[userID] = append(m.calendar.events[userID], events...)
}
