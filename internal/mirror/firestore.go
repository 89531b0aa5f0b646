package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"codeberg.org/boomline/server/internal/ledger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "history"

type FirestoreMirror struct {
	client     *firestore.Client
	collection string
}

type historyDocument struct {
	Owner       string    `firestore:"owner"`
	EntryID     string    `firestore:"entry_id"`
	ContentType string    `firestore:"content_type"`
	Prompt      string    `firestore:"prompt"`
	Kind        string    `firestore:"kind"`
	Result      string    `firestore:"result"`
	CreatedAt   time.Time `firestore:"created_at"`
	Timestamp   any       `firestore:"timestamp"`
}

// connects to Firestore; FIRESTORE_EMULATOR_HOST is honoured by the client
func NewFirestore(ctx context.Context, projectID, collection string) (*FirestoreMirror, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}

	if collection == "" {
		collection = defaultCollection
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &FirestoreMirror{client: client, collection: collection}, nil
}

func (m *FirestoreMirror) Close() error {
	return m.client.Close()
}

func (m *FirestoreMirror) Add(ctx context.Context, owner string, entry ledger.Entry) error {
	doc := historyDocument{
		Owner:       owner,
		EntryID:     entry.ID,
		ContentType: entry.ContentType,
		Prompt:      sanitize(entry.Prompt),
		Kind:        string(entry.Result.Kind),
		Result:      sanitize(entry.Result.Output()),
		CreatedAt:   entry.CreatedAt,
		Timestamp:   firestore.ServerTimestamp,
	}

	if _, _, err := m.client.Collection(m.collection).Add(ctx, doc); err != nil {
		return fmt.Errorf("failed to mirror entry: %w", err)
	}

	return nil
}

// deletes every document of the owner one by one, so one failure does not stop the rest
func (m *FirestoreMirror) Clear(ctx context.Context, owner string) (int, error) {
	snaps, err := m.client.Collection(m.collection).Where("owner", "==", owner).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list mirrored entries: %w", err)
	}

	var (
		deleted int
		errs    []error
	)

	for _, snap := range snaps {
		_, err := snap.Ref.Delete(ctx)
		if err != nil && status.Code(err) != codes.NotFound {
			errs = append(errs, fmt.Errorf("%s: %w", snap.Ref.ID, err))
			continue
		}

		deleted++
	}

	if len(errs) > 0 {
		return deleted, &PartialClearError{Deleted: deleted, Failed: len(errs), Err: errors.Join(errs...)}
	}

	return deleted, nil
}
