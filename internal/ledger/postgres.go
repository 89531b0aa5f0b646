package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"codeberg.org/boomline/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps entries and counters in two tables
type PostgresStore struct {
	pool *pgxpool.Pool
}

// satisfied by both the pool and a transaction
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createSchemaQuery); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// shared with the subscription lookup
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func insertEntry(ctx context.Context, db execer, owner string, entry Entry) error {
	res, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = db.Exec(ctx, insertEntryQuery,
		entry.ID,
		owner,
		entry.ContentType,
		entry.Prompt,
		res,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// entry and counter go in one transaction
func (s *PostgresStore) Commit(ctx context.Context, owner string, entry Entry, today string, limit int) (UsageCounter, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return UsageCounter{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if err := insertEntry(ctx, tx, owner, entry); err != nil {
		return UsageCounter{}, err
	}

	var counter UsageCounter
	if err := tx.QueryRow(ctx, bumpCounterQuery, owner, today, limit).Scan(&counter.DateKey, &counter.Count); err != nil {
		return UsageCounter{}, fmt.Errorf("failed to update usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return UsageCounter{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return counter, nil
}

func (s *PostgresStore) Append(ctx context.Context, owner string, entry Entry) error {
	return insertEntry(ctx, s.pool, owner, entry)
}

func (s *PostgresStore) Counter(ctx context.Context, owner string) (UsageCounter, error) {
	var counter UsageCounter

	err := s.pool.QueryRow(ctx, getCounterQuery, owner).Scan(&counter.DateKey, &counter.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return UsageCounter{}, nil
	}

	if err != nil {
		return UsageCounter{}, fmt.Errorf("failed to read usage: %w", err)
	}

	return counter, nil
}

func (s *PostgresStore) History(ctx context.Context, owner string, limit int) ([]Entry, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if limit > 0 {
		rows, err = s.pool.Query(ctx, listEntriesLimitQuery, owner, limit)
	} else {
		rows, err = s.pool.Query(ctx, listEntriesQuery, owner)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}

	for rows.Next() {
		var (
			entry Entry
			raw   []byte
		)

		if err := rows.Scan(&entry.ID, &entry.ContentType, &entry.Prompt, &raw, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		if err := json.Unmarshal(raw, &entry.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) Clear(ctx context.Context, owner string) (int, error) {
	tag, err := s.pool.Exec(ctx, deleteEntriesQuery, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
