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

const contactsCollection = "contacts"

type contactRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ContactRepository = &contactRepository{}

func newContactRepository(client *firestore.Client) *contactRepository {
	return &contactRepository{
		client: client,
	}
}

// contactDoc is the Firestore persistence model
type contactDoc struct {
	UserID           string    `firestore:"user_id"`
	Email            string    `firestore:"email"`
	DisplayName      string    `firestore:"display_name"`
	InteractionCount int       `firestore:"interaction_count"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

func (r *contactRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + contactsCollection)
	}
	return r.client.Collection(contactsCollection)
}

func contactDocID(userID types.UserID, key types.ContactKey) string {
	return string(userID) + "_" + string(key)
}

func (r *contactRepository) toDoc(userID types.UserID, c *model.Contact) *contactDoc {
	return &contactDoc{
		UserID:           string(userID),
		Email:            string(c.Email),
		DisplayName:      c.DisplayName,
		InteractionCount: c.InteractionCount,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (r *contactRepository) fromDoc(doc *contactDoc) *model.Contact {
	return &model.Contact{
		Email:            types.ContactKey(doc.Email),
		DisplayName:      doc.DisplayName,
		InteractionCount: doc.InteractionCount,
		UpdatedAt:        doc.UpdatedAt,
	}
}

// PutAll upserts contacts keyed by (user, canonical email)
func (r *contactRepository) PutAll(ctx context.Context, userID types.UserID, contacts []*model.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, c := range contacts {
		docRef := r.collection().Doc(contactDocID(userID, c.Email))
		if _, err := bulkWriter.Set(docRef, r.toDoc(userID, c)); err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer",
				goerr.V("user_id", userID), goerr.V("email", c.Email))
		}
	}

	bulkWriter.Flush()

	return nil
}

// Get retrieves a single contact by canonical email
func (r *contactRepository) Get(ctx context.Context, userID types.UserID, key types.ContactKey) (*model.Contact, error) {
	doc, err := r.collection().Doc(contactDocID(userID, key)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "contact not found",
				goerr.V("user_id", userID), goerr.V("email", key))
		}
		return nil, goerr.Wrap(err, "failed to get contact",
			goerr.V("user_id", userID), goerr.V("email", key))
	}

	var cd contactDoc
	if err := doc.DataTo(&cd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal contact", goerr.V("email", key))
	}

	return r.fromDoc(&cd), nil
}

// List retrieves all contacts of a user, ordered by canonical email
func (r *contactRepository) List(ctx context.Context, userID types.UserID) ([]*model.Contact, error) {
	iter := r.collection().
		Where("user_id", "==", string(userID)).
		OrderBy("email", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var contacts []*model.Contact
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate contacts", goerr.V("user_id", userID))
		}

		var cd contactDoc
		if err := doc.DataTo(&cd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal contact", goerr.V("docID", doc.Ref.ID))
		}

		contacts = append(contacts, r.fromDoc(&cd))
	}

	return contacts, nil
}
