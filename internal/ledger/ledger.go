package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/boomline/server/internal/errors"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// combines the history list and the daily usage counter
type Ledger struct {
	store      Store
	quota      int
	upgradeURL string
	loc        *time.Location
	now        func() time.Time
}

func New(store Store, opts Options) *Ledger {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Ledger{
		store:      store,
		quota:      opts.DailyQuota,
		upgradeURL: opts.UpgradeURL,
		loc:        loc,
		now:        now,
	}
}

// formats the calendar day key for t
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

func (l *Ledger) today() string {
	return DateKey(l.now().In(l.loc))
}

// daily limit, 0 when unlimited
func (l *Ledger) Limit() int {
	return l.quota
}

func (l *Ledger) UpgradeURL() string {
	return l.upgradeURL
}

// computes quota state for a stored counter as of today
func (l *Ledger) quotaFor(counter UsageCounter, today string) Quota {
	count := counter.Count
	if counter.DateKey != today {
		count = 0
	}

	if l.quota <= 0 {
		return Quota{Allowed: true, Remaining: -1, Count: count, Date: today}
	}

	remaining := max(l.quota-count, 0)

	return Quota{
		Allowed:   count < l.quota,
		Remaining: remaining,
		Limit:     l.quota,
		Count:     min(count, l.quota),
		Date:      today,
	}
}

// reports whether the owner may generate right now
func (l *Ledger) CheckQuota(ctx context.Context, owner string) (Quota, error) {
	counter, err := l.store.Counter(ctx, owner)
	if err != nil {
		return Quota{}, &errors.PersistenceError{Op: "load", Err: err}
	}

	return l.quotaFor(counter, l.today()), nil
}

// returns a QuotaExceededError when the owner has no generations left
func (l *Ledger) Require(ctx context.Context, owner string) (Quota, error) {
	quota, err := l.CheckQuota(ctx, owner)
	if err != nil {
		return quota, err
	}

	if !quota.Allowed {
		return quota, &errors.QuotaExceededError{Limit: l.quota, Count: quota.Count, UpgradeURL: l.upgradeURL}
	}

	return quota, nil
}

// stores the entry, counts it against today and returns the quota left afterwards
func (l *Ledger) RecordAndCheckQuota(ctx context.Context, owner string, entry Entry) (Quota, error) {
	_, quota, err := l.Record(ctx, owner, entry)
	return quota, err
}

// like RecordAndCheckQuota, also returning the stored entry
func (l *Ledger) Record(ctx context.Context, owner string, entry Entry) (Entry, Quota, error) {
	entry, err := l.prepare(entry)
	if err != nil {
		return Entry{}, Quota{}, err
	}

	today := l.today()

	counter, err := l.store.Commit(ctx, owner, entry, today, l.quota)
	if err != nil {
		return Entry{}, Quota{}, &errors.PersistenceError{Op: "save", Err: err}
	}

	return entry, l.quotaFor(counter, today), nil
}

// appends an entry without counting it, used for explicit saves
func (l *Ledger) Save(ctx context.Context, owner string, entry Entry) (Entry, error) {
	entry, err := l.prepare(entry)
	if err != nil {
		return Entry{}, err
	}

	if err := l.store.Append(ctx, owner, entry); err != nil {
		return Entry{}, &errors.PersistenceError{Op: "save", Err: err}
	}

	return entry, nil
}

// loads the owner's history, newest first
func (l *Ledger) History(ctx context.Context, owner string, limit int) ([]Entry, error) {
	entries, err := l.store.History(ctx, owner, limit)
	if err != nil {
		return nil, &errors.PersistenceError{Op: "load", Err: err}
	}

	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// removes the owner's history; the usage counter is kept
func (l *Ledger) Clear(ctx context.Context, owner string) (int, error) {
	n, err := l.store.Clear(ctx, owner)
	if err != nil {
		return n, &errors.PersistenceError{Op: "clear", Err: err}
	}

	return n, nil
}

// fills ID and timestamp, refusing error results
func (l *Ledger) prepare(entry Entry) (Entry, error) {
	if entry.Result.IsError() {
		return entry, fmt.Errorf("error results are not recorded")
	}

	if strings.TrimSpace(entry.Result.Output()) == "" {
		return entry, errors.Invalid("result", "result is required")
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now().UTC()
	}

	return entry, nil
}
