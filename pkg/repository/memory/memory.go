package memory

import (
	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	thread   *threadRepository
	contact  *contactRepository
	timeline *timelineRepository
	metrics  *metricsRepository
	cache    *messageCache
	calendar *calendarSource
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		thread:   newThreadRepository(),
		contact:  newContactRepository(),
		timeline: newTimelineRepository(),
		metrics:  newMetricsRepository(),
		cache:    newMessageCache(),
		calendar: newCalendarSource(),
	}
}

func (m *Memory) Thread() interfaces.ThreadRepository {
	return m.thread
}

func (m *Memory) Contact() interfaces.ContactRepository {
	return m.contact
}

func (m *Memory) Timeline() interfaces.TimelineRepository {
	return m.timeline
}

func (m *Memory) Metrics() interfaces.MetricsRepository {
	return m.metrics
}

func (m *Memory) MessageCache() interfaces.MessageCache {
	return m.cache
}

func (m *Memory) Calendar() interfaces.CalendarSource {
	return m.calendar
}

func (m *Memory) Close() error {
	return nil
}
