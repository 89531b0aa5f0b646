package ledger

import (
	"context"
	"time"

	"codeberg.org/boomline/server/internal/result"
)

// one successful generation; error results are never stored
type Entry struct {
	ID          string        `json:"id"`
	ContentType string        `json:"contentType"`
	Prompt      string        `json:"prompt"`
	Result      result.Result `json:"result"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// generations counted for one calendar day
type UsageCounter struct {
	DateKey string `json:"dateKey"`
	Count   int    `json:"count"`
}

// quota state reported to callers
type Quota struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"` // -1 when unlimited
	Limit     int    `json:"limit"`     // 0 when unlimited
	Count     int    `json:"count"`
	Date      string `json:"date"`
}

// persists history and usage per owner
type Store interface {
	// appends entry and bumps the counter for today in one step,
	// resetting it first when it belongs to another day; limit caps
	// the stored count (0 leaves it uncapped)
	Commit(ctx context.Context, owner string, entry Entry, today string, limit int) (UsageCounter, error)

	// appends entry without touching the counter
	Append(ctx context.Context, owner string, entry Entry) error

	Counter(ctx context.Context, owner string) (UsageCounter, error)

	// newest first; limit <= 0 returns everything
	History(ctx context.Context, owner string, limit int) ([]Entry, error)

	// removes the owner's history and returns how many entries went away
	Clear(ctx context.Context, owner string) (int, error)
}

type Options struct {
	DailyQuota int
	UpgradeURL string

	// calendar days are taken in this zone, UTC when nil
	Location *time.Location
	Clock    func() time.Time
}
