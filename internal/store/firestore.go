package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection used when none is configured
const DefaultCollection = "offers"

// firestoreDoc is the stored document. The request is kept as JSON so that
// its field names match the HTTP and file formats.
type firestoreDoc struct {
	Profile   string    `firestore:"profile"`
	Number    string    `firestore:"number"`
	Buyer     string    `firestore:"buyer"`
	Products  int       `firestore:"products"`
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Firestore stores offers as documents of one collection
type Firestore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

// NewFirestore creates a Firestore client for projectID
func NewFirestore(ctx context.Context, projectID, collection string) (*Firestore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Firestore{client: client, collection: collection, now: time.Now}, nil
}

func (f *Firestore) doc(id string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(id)
}

func (f *Firestore) Put(ctx context.Context, rec Record) (Record, error) {
	rec = prepare(rec, f.now())
	payload, err := json.Marshal(rec.Request)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode offer: %w", err)
	}
	s := summarize(rec)
	doc := firestoreDoc{
		Profile:   s.Profile,
		Number:    s.Number,
		Buyer:     s.Buyer,
		Products:  s.Products,
		Payload:   string(payload),
		UpdatedAt: s.UpdatedAt,
	}
	if _, err := f.doc(rec.ID).Set(ctx, doc); err != nil {
		return Record{}, fmt.Errorf("failed to save offer %s: %w", rec.ID, err)
	}
	return rec, nil
}

func (f *Firestore) Get(ctx context.Context, id string) (Record, error) {
	snap, err := f.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load offer %s: %w", id, err)
	}
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return Record{}, fmt.Errorf("failed to decode offer %s: %w", id, err)
	}
	rec := Record{ID: id, Profile: doc.Profile, UpdatedAt: doc.UpdatedAt}
	if err := json.Unmarshal([]byte(doc.Payload), &rec.Request); err != nil {
		return Record{}, fmt.Errorf("failed to decode offer %s: %w", id, err)
	}
	return rec, nil
}

func (f *Firestore) List(ctx context.Context, profile string) ([]Summary, error) {
	q := f.client.Collection(f.collection).Query
	if profile != "" {
		q = q.Where("profile", "==", profile)
	}
	iter := q.OrderBy("updatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	out := []Summary{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list offers: %w", err)
		}
		var doc firestoreDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode offer %s: %w", snap.Ref.ID, err)
		}
		out = append(out, Summary{
			ID:        snap.Ref.ID,
			Profile:   doc.Profile,
			Number:    doc.Number,
			Buyer:     doc.Buyer,
			Products:  doc.Products,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, nil
}

func (f *Firestore) Delete(ctx context.Context, id string) error {
	_, err := f.doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete offer %s: %w", id, err)
	}
	return nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
