package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codeberg.org/boomline/server/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyHistory = "ledger:history:%s"
	keyUsage   = "ledger:usage:%s"

	// the counter only has to outlive its own day
	usageTTL = 48 * time.Hour

	maxCommitRetries = 5
)

// RedisStore keeps history as a list per owner and the counter as a hash
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// connects to redis from a URL and checks the connection
func NewRedisStoreFromURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis", "store", "ledger")

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func readCounter(ctx context.Context, c redis.Cmdable, key string) (UsageCounter, error) {
	values, err := c.HGetAll(ctx, key).Result()
	if err != nil {
		return UsageCounter{}, err
	}

	counter := UsageCounter{DateKey: values["date"]}

	if raw, ok := values["count"]; ok {
		counter.Count, err = strconv.Atoi(raw)
		if err != nil {
			return UsageCounter{}, fmt.Errorf("invalid usage count %q: %w", raw, err)
		}
	}

	return counter, nil
}

// optimistic transaction on the usage hash, retried when another writer gets there first
func (s *RedisStore) Commit(ctx context.Context, owner string, entry Entry, today string, limit int) (UsageCounter, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return UsageCounter{}, fmt.Errorf("failed to encode entry: %w", err)
	}

	historyKey := fmt.Sprintf(keyHistory, owner)
	usageKey := fmt.Sprintf(keyUsage, owner)

	var next UsageCounter

	txf := func(tx *redis.Tx) error {
		current, err := readCounter(ctx, tx, usageKey)
		if err != nil {
			return err
		}

		next = current
		if next.DateKey != today {
			next = UsageCounter{DateKey: today}
		}

		next.Count++
		if limit > 0 && next.Count > limit {
			next.Count = limit
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LPush(ctx, historyKey, data)
			pipe.HSet(ctx, usageKey, "date", next.DateKey, "count", next.Count)
			pipe.Expire(ctx, usageKey, usageTTL)

			return nil
		})

		return err
	}

	for range maxCommitRetries {
		err := s.client.Watch(ctx, txf, usageKey)
		if err == nil {
			return next, nil
		}

		if !errors.Is(err, redis.TxFailedErr) {
			return UsageCounter{}, fmt.Errorf("failed to commit entry: %w", err)
		}
	}

	return UsageCounter{}, fmt.Errorf("failed to commit entry: too much contention on %s", usageKey)
}

func (s *RedisStore) Append(ctx context.Context, owner string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	if err := s.client.LPush(ctx, fmt.Sprintf(keyHistory, owner), data).Err(); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	return nil
}

func (s *RedisStore) Counter(ctx context.Context, owner string) (UsageCounter, error) {
	counter, err := readCounter(ctx, s.client, fmt.Sprintf(keyUsage, owner))
	if err != nil {
		return UsageCounter{}, fmt.Errorf("failed to read usage: %w", err)
	}

	return counter, nil
}

func (s *RedisStore) History(ctx context.Context, owner string, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := s.client.LRange(ctx, fmt.Sprintf(keyHistory, owner), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))

	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			logger.Warn("skipping unreadable history entry", "owner", owner, "error", err)
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context, owner string) (int, error) {
	key := fmt.Sprintf(keyHistory, owner)

	pipe := s.client.TxPipeline()
	lenCmd := pipe.LLen(ctx, key)
	pipe.Del(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	return int(lenCmd.Val()), nil
}
