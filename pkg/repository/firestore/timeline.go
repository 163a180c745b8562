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

const timelineCollection = "timeline_events"

type timelineRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.TimelineRepository = &timelineRepository{}

func newTimelineRepository(client *firestore.Client) *timelineRepository {
	return &timelineRepository{
		client: client,
	}
}

// timelineEventDoc is the Firestore persistence model
type timelineEventDoc struct {
	ID              string    `firestore:"id"`
	UserID          string    `firestore:"user_id"`
	Timestamp       time.Time `firestore:"timestamp"`
	Category        string    `firestore:"category"`
	Context         string    `firestore:"context"`
	SourceID        string    `firestore:"source_id"`
	DurationMinutes float64   `firestore:"duration_minutes"`
	Weight          float64   `firestore:"weight"`
}

func (r *timelineRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + timelineCollection)
	}
	return r.client.Collection(timelineCollection)
}

func (r *timelineRepository) toDoc(ev *model.TimelineEvent) *timelineEventDoc {
	return &timelineEventDoc{
		ID:              ev.ID,
		UserID:          string(ev.UserID),
		Timestamp:       ev.Timestamp,
		Category:        ev.Category.String(),
		Context:         ev.Context,
		SourceID:        ev.SourceID,
		DurationMinutes: ev.DurationMinutes,
		Weight:          ev.Weight,
	}
}

func (r *timelineRepository) fromDoc(doc *timelineEventDoc) model.TimelineEvent {
	return model.TimelineEvent{
		ID:              doc.ID,
		UserID:          types.UserID(doc.UserID),
		Timestamp:       doc.Timestamp,
		Category:        types.EventCategory(doc.Category),
		Context:         doc.Context,
		SourceID:        doc.SourceID,
		DurationMinutes: doc.DurationMinutes,
		Weight:          doc.Weight,
	}
}

// Append stores new events for a user. Events are keyed by their own ID, so a
// retried append overwrites rather than duplicates.
func (r *timelineRepository) Append(ctx context.Context, userID types.UserID, events []model.TimelineEvent) error {
	if len(events) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for i := range events {
		ev := &events[i]
		docRef := r.collection().Doc(ev.ID)
		if _, err := bulkWriter.Set(docRef, r.toDoc(ev)); err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer",
				goerr.V("user_id", userID), goerr.V("event_id", ev.ID))
		}
	}

	bulkWriter.Flush()

	return nil
}

// List retrieves events with timestamp >= since, ordered ascending. A zero
// since returns the whole timeline. Requires a composite index on
// (user_id, timestamp); see the migrate command.
func (r *timelineRepository) List(ctx context.Context, userID types.UserID, since time.Time) ([]model.TimelineEvent, error) {
	query := r.collection().Where("user_id", "==", string(userID))
	if !since.IsZero() {
		query = query.Where("timestamp", ">=", since)
	}
	iter := query.OrderBy("timestamp", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var events []model.TimelineEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate timeline events", goerr.V("user_id", userID))
		}

		var ed timelineEventDoc
		if err := doc.DataTo(&ed); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal timeline event", goerr.V("docID", doc.Ref.ID))
		}

		events = append(events, r.fromDoc(&ed))
	}

	return events, nil
}
