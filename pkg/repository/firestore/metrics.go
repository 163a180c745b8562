package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/inboxpulse/inboxpulse/pkg/domain/interfaces"
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

const metricsCollection = "daily_metrics"

type metricsRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.MetricsRepository = &metricsRepository{}

func newMetricsRepository(client *firestore.Client) *metricsRepository {
	return &metricsRepository{
		client: client,
	}
}

// metricsSnapshotDoc is the Firestore persistence model. LoadByHour is stored
// as a plain slice since Firestore arrays do not map onto fixed-size arrays.
type metricsSnapshotDoc struct {
	UserID          string             `firestore:"user_id"`
	Date            string             `firestore:"date"`
	ThreadDecayRate float64            `firestore:"thread_decay_rate"`
	ContextSwitches int                `firestore:"context_switches"`
	LoadByHour      []float64          `firestore:"load_by_hour"`
	TimeByContext   map[string]float64 `firestore:"time_by_context"`
	CreatedAt       time.Time          `firestore:"created_at"`
}

func (r *metricsRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + metricsCollection)
	}
	return r.client.Collection(metricsCollection)
}

func metricsDocID(userID types.UserID, date string) string {
	return string(userID) + "_" + date
}

func (r *metricsRepository) toDoc(s *model.MetricsSnapshot) *metricsSnapshotDoc {
	load := make([]float64, len(s.LoadByHour))
	copy(load, s.LoadByHour[:])
	timeByContext := make(map[string]float64, len(s.TimeByContext))
	for k, v := range s.TimeByContext {
		timeByContext[k] = v
	}
	return &metricsSnapshotDoc{
		UserID:          string(s.UserID),
		Date:            s.Date,
		ThreadDecayRate: s.ThreadDecayRate,
		ContextSwitches: s.ContextSwitches,
		LoadByHour:      load,
		TimeByContext:   timeByContext,
		CreatedAt:       s.CreatedAt,
	}
}

func (r *metricsRepository) fromDoc(doc *metricsSnapshotDoc) *model.MetricsSnapshot {
	s := &model.MetricsSnapshot{
		UserID:          types.UserID(doc.UserID),
		Date:            doc.Date,
		ThreadDecayRate: doc.ThreadDecayRate,
		ContextSwitches: doc.ContextSwitches,
		TimeByContext:   make(map[string]float64, len(doc.TimeByContext)),
		CreatedAt:       doc.CreatedAt,
	}
	for i, v := range doc.LoadByHour {
		if i >= len(s.LoadByHour) {
			break
		}
		s.LoadByHour[i] = v
	}
	for k, v := range doc.TimeByContext {
		s.TimeByContext[k] = v
	}
	return s
}

// PutSnapshot upserts a snapshot keyed by (user, date)
func (r *metricsRepository) PutSnapshot(ctx context.Context, snapshot *model.MetricsSnapshot) error {
	docRef := r.collection().Doc(metricsDocID(snapshot.UserID, snapshot.Date))
	if _, err := docRef.Set(ctx, r.toDoc(snapshot)); err != nil {
		return goerr.Wrap(err, "failed to save metrics snapshot",
			goerr.V("user_id", snapshot.UserID), goerr.V("date", snapshot.Date))
	}
	return nil
}

// GetSnapshot retrieves the snapshot for a specific date
func (r *metricsRepository) GetSnapshot(ctx context.Context, userID types.UserID, date string) (*model.MetricsSnapshot, error) {
	doc, err := r.collection().Doc(metricsDocID(userID, date)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "snapshot not found",
				goerr.V("user_id", userID), goerr.V("date", date))
		}
		return nil, goerr.Wrap(err, "failed to get metrics snapshot",
			goerr.V("user_id", userID), goerr.V("date", date))
	}

	var sd metricsSnapshotDoc
	if err := doc.DataTo(&sd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal metrics snapshot", goerr.V("date", date))
	}

	return r.fromDoc(&sd), nil
}

// GetLatestSnapshot retrieves the most recently created snapshot of a user.
// Returns nil, nil when the user has none yet. Requires a composite index on
// (user_id, created_at); see the migrate command.
func (r *metricsRepository) GetLatestSnapshot(ctx context.Context, userID types.UserID) (*model.MetricsSnapshot, error) {
	iter := r.collection().
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest snapshot", goerr.V("user_id", userID))
	}

	var sd metricsSnapshotDoc
	if err := doc.DataTo(&sd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal metrics snapshot", goerr.V("docID", doc.Ref.ID))
	}

	return r.fromDoc(&sd), nil
}
