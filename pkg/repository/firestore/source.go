package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

const (
	messageCacheCollection = "message_cache"
	calendarCollection     = "calendar_events"
)

// messageCache reads raw message records written by the ingestion service.
// This subsystem never writes to the cache.
type messageCache struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.MessageCache = &messageCache{}

func newMessageCache(client *firestore.Client) *messageCache {
	return &messageCache{
		client: client,
	}
}

// rawMessageDoc mirrors the shape the ingestion service persists
type rawMessageDoc struct {
	ID                string    `firestore:"id"`
	UserID            string    `firestore:"user_id"`
	ThreadIDHint      string    `firestore:"thread_id_hint"`
	InternalTimestamp time.Time `firestore:"internal_timestamp"`
	RawHeaderPayload  []byte    `firestore:"raw_header_payload"`
}

func (r *messageCache) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + messageCacheCollection)
	}
	return r.client.Collection(messageCacheCollection)
}

// FetchWindow returns the cached raw messages within the days-back bound,
// ordered newest-first. Requires a composite index on (user_id,
// internal_timestamp); see the migrate command.
func (r *messageCache) FetchWindow(ctx context.Context, userID types.UserID, daysBack int) ([]*model.RawMessage, error) {
	query := r.collection().Where("user_id", "==", string(userID))
	if daysBack > 0 {
		cutoff := time.Now().AddDate(0, 0, -daysBack)
		query = query.Where("internal_timestamp", ">=", cutoff)
	}
	iter := query.OrderBy("internal_timestamp", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var messages []*model.RawMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate cached messages", goerr.V("user_id", userID))
		}

		var md rawMessageDoc
		if err := doc.DataTo(&md); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal cached message", goerr.V("docID", doc.Ref.ID))
		}

		messages = append(messages, &model.RawMessage{
			ID:                types.MessageID(md.ID),
			ThreadIDHint:      md.ThreadIDHint,
			InternalTimestamp: md.InternalTimestamp,
			RawHeaderPayload:  md.RawHeaderPayload,
		})
	}

	return messages, nil
}

// calendarSource reads calendar events written by the ingestion service
type calendarSource struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.CalendarSource = &calendarSource{}

func newCalendarSource(client *firestore.Client) *calendarSource {
	return &calendarSource{
		client: client,
	}
}

type calendarEventDoc struct {
	ID      string    `firestore:"id"`
	UserID  string    `firestore:"user_id"`
	Title   string    `firestore:"title"`
	Start   time.Time `firestore:"start"`
	End     time.Time `firestore:"end"`
	Context string    `firestore:"context"`
}

func (r *calendarSource) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + calendarCollection)
	}
	return r.client.Collection(calendarCollection)
}

// FetchWindow returns the ingested calendar events within the days-back
// bound, ordered by start ascending.
func (r *calendarSource) FetchWindow(ctx context.Context, userID types.UserID, daysBack int) ([]model.CalendarEvent, error) {
	query := r.collection().Where("user_id", "==", string(userID))
	if daysBack > 0 {
		cutoff := time.Now().AddDate(0, 0, -daysBack)
		query = query.Where("start", ">=", cutoff)
	}
	iter := query.OrderBy("start", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var events []model.CalendarEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate calendar events", goerr.V("user_id", userID))
		}

		var ed calendarEventDoc
		if err := doc.DataTo(&ed); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal calendar event", goerr.V("docID", doc.Ref.ID))
		}

		events = append(events, model.CalendarEvent{
			ID:      ed.ID,
			Title:   ed.Title,
			Start:   ed.Start,
			End:     ed.End,
			Context: ed.Context,
		})
	}

	return events, nil
}
