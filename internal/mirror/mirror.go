package mirror

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/ledger"
	"github.com/microcosm-cc/bluemonday"
)

// hosted copy of history entries, written after the local commit
type Mirror interface {
	Add(ctx context.Context, owner string, entry ledger.Entry) error

	// best-effort bulk delete, partial failures come back as *PartialClearError
	Clear(ctx context.Context, owner string) (int, error)
}

// some documents could not be deleted; the ones that were stay deleted
type PartialClearError struct {
	Deleted int
	Failed  int
	Err     error
}

func (e *PartialClearError) Error() string {
	return fmt.Sprintf("mirror clear incomplete: %d deleted, %d failed: %v", e.Deleted, e.Failed, e.Err)
}

func (e *PartialClearError) Unwrap() error {
	return e.Err
}

// used when no mirror is configured
type Nop struct{}

func (Nop) Add(context.Context, string, ledger.Entry) error { return nil }
func (Nop) Clear(context.Context, string) (int, error)      { return 0, nil }

var policy = bluemonday.StrictPolicy()

// strips markup from user supplied text before it leaves the process
func sanitize(s string) string {
	return policy.Sanitize(s)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// creates the configured mirror; the closer releases its client
func New(ctx context.Context, cfg *config.Config) (Mirror, io.Closer, error) {
	switch cfg.MirrorProvider {
	case "none", "":
		return Nop{}, nopCloser{}, nil
	case "memory":
		return NewMemory(), nopCloser{}, nil
	case "firestore":
		m, err := NewFirestore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCollection)
		if err != nil {
			return nil, nil, err
		}

		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("unsupported mirror provider: %s", cfg.MirrorProvider)
	}
}
