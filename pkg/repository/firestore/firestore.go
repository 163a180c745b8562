package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
)

type Firestore struct {
	client   *firestore.Client
	thread   *threadRepository
	contact  *contactRepository
	timeline *timelineRepository
	metrics  *metricsRepository
	cache    *messageCache
	calendar *calendarSource
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.thread.collectionPrefix = prefix
		f.contact.collectionPrefix = prefix
		f.timeline.collectionPrefix = prefix
		f.metrics.collectionPrefix = prefix
		f.cache.collectionPrefix = prefix
		f.calendar.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:   client,
		thread:   newThreadRepository(client),
		contact:  newContactRepository(client),
		timeline: newTimelineRepository(client),
		metrics:  newMetricsRepository(client),
		cache:    newMessageCache(client),
		calendar: newCalendarSource(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Thread() interfaces.ThreadRepository {
	return f.thread
}

func (f *Firestore) Contact() interfaces.ContactRepository {
	return f.contact
}

func (f *Firestore) Timeline() interfaces.TimelineRepository {
	return f.timeline
}

func (f *Firestore) Metrics() interfaces.MetricsRepository {
	return f.metrics
}

func (f *Firestore) MessageCache() interfaces.MessageCache {
	return f.cache
}

func (f *Firestore) Calendar() interfaces.CalendarSource {
	return f.calendar
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
