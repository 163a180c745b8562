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

const threadsCollection = "threads"

type threadRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ThreadRepository = &threadRepository{}

func newThreadRepository(client *firestore.Client) *threadRepository {
	return &threadRepository{
		client: client,
	}
}

// threadDoc is the Firestore persistence model
type threadDoc struct {
	UserID        string             `firestore:"user_id"`
	ID            string             `firestore:"id"`
	RootMessageID string             `firestore:"root_message_id"`
	Subject       string             `firestore:"subject"`
	Participants  []string           `firestore:"participants"`
	Messages      []threadMessageDoc `firestore:"messages"`
	LastMessageAt time.Time          `firestore:"last_message_at"`
	LastSender    string             `firestore:"last_sender"`
	UserSentLast  bool               `firestore:"user_sent_last"`
	Abandoned     bool               `firestore:"abandoned"`
}

type threadMessageDoc struct {
	MessageID            string    `firestore:"message_id"`
	From                 string    `firestore:"from"`
	Timestamp            time.Time `firestore:"timestamp"`
	Sequence             int       `firestore:"sequence"`
	ResponseHours        *float64  `firestore:"response_hours"`
	WorkingResponseHours *float64  `firestore:"working_response_hours"`
	WithinWorkingHours   bool      `firestore:"within_working_hours"`
}

func cloneHours(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (r *threadRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + threadsCollection)
	}
	return r.client.Collection(threadsCollection)
}

func docID(userID types.UserID, id types.ThreadID) string {
	return string(userID) + "_" + string(id)
}

func (r *threadRepository) toDoc(userID types.UserID, th *model.Thread) *threadDoc {
	participants := make([]string, len(th.Participants))
	for i, p := range th.Participants {
		participants[i] = string(p)
	}
	messages := make([]threadMessageDoc, len(th.Messages))
	for i, m := range th.Messages {
		messages[i] = threadMessageDoc{
			MessageID:            string(m.MessageID),
			From:                 string(m.From),
			Timestamp:            m.Timestamp,
			Sequence:             m.Sequence,
			ResponseHours:        cloneHours(m.ResponseHours),
			WorkingResponseHours: cloneHours(m.WorkingResponseHours),
			WithinWorkingHours:   m.WithinWorkingHours,
		}
	}
	return &threadDoc{
		UserID:        string(userID),
		ID:            string(th.ID),
		RootMessageID: string(th.RootMessageID),
		Subject:       th.Subject,
		Participants:  participants,
		Messages:      messages,
		LastMessageAt: th.LastMessageAt,
		LastSender:    string(th.LastSender),
		UserSentLast:  th.UserSentLast,
		Abandoned:     th.Abandoned,
	}
}

func (r *threadRepository) fromDoc(doc *threadDoc) *model.Thread {
	participants := make([]types.ContactKey, len(doc.Participants))
	for i, p := range doc.Participants {
		participants[i] = types.ContactKey(p)
	}
	messages := make([]model.ThreadMessage, len(doc.Messages))
	for i, m := range doc.Messages {
		messages[i] = model.ThreadMessage{
			MessageID:            types.MessageID(m.MessageID),
			From:                 types.ContactKey(m.From),
			Timestamp:            m.Timestamp,
			Sequence:             m.Sequence,
			ResponseHours:        cloneHours(m.ResponseHours),
			WorkingResponseHours: cloneHours(m.WorkingResponseHours),
			WithinWorkingHours:   m.WithinWorkingHours,
		}
	}
	return &model.Thread{
		ID:            types.ThreadID(doc.ID),
		RootMessageID: types.MessageID(doc.RootMessageID),
		Subject:       doc.Subject,
		Participants:  participants,
		Messages:      messages,
		LastMessageAt: doc.LastMessageAt,
		LastSender:    types.ContactKey(doc.LastSender),
		UserSentLast:  doc.UserSentLast,
		Abandoned:     doc.Abandoned,
	}
}

// PutAll upserts threads keyed by (user, thread ID). BulkWriter handles the
// 500-document batch limit internally.
func (r *threadRepository) PutAll(ctx context.Context, userID types.UserID, threads []*model.Thread) error {
	if len(threads) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, th := range threads {
		docRef := r.collection().Doc(docID(userID, th.ID))
		if _, err := bulkWriter.Set(docRef, r.toDoc(userID, th)); err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer",
				goerr.V("user_id", userID), goerr.V("thread_id", th.ID))
		}
	}

	bulkWriter.Flush()

	return nil
}

// Get retrieves a single thread by ID
func (r *threadRepository) Get(ctx context.Context, userID types.UserID, id types.ThreadID) (*model.Thread, error) {
	doc, err := r.collection().Doc(docID(userID, id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "thread not found",
				goerr.V("user_id", userID), goerr.V("thread_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get thread",
			goerr.V("user_id", userID), goerr.V("thread_id", id))
	}

	var td threadDoc
	if err := doc.DataTo(&td); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal thread", goerr.V("thread_id", id))
	}

	return r.fromDoc(&td), nil
}

// List retrieves all threads of a user, ordered by last activity descending
func (r *threadRepository) List(ctx context.Context, userID types.UserID) ([]*model.Thread, error) {
	iter := r.collection().
		Where("user_id", "==", string(userID)).
		OrderBy("last_message_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var threads []*model.Thread
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate threads", goerr.V("user_id", userID))
		}

		var td threadDoc
		if err := doc.DataTo(&td); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal thread", goerr.V("docID", doc.Ref.ID))
		}

		threads = append(threads, r.fromDoc(&td))
	}

	return threads, nil
}
