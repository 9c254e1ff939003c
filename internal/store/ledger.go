package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ledgerTTL keeps a day's marker around long enough to cover restarts and
// timezone skew, then lets redis expire it.
const ledgerTTL = 36 * time.Hour

func ledgerKey(userID int64, day time.Time) string {
	return fmt.Sprintf("canilaba:notified:%s:%d", day.Format("2006-01-02"), userID)
}

// RedisLedger records which users were already notified on a given day.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger connects to the redis instance at url (redis://host:port/db).
func NewRedisLedger(ctx context.Context, url string) (*RedisLedger, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisLedger{client: client}, nil
}

// MarkNotified records the notification and reports whether it was new.
func (l *RedisLedger) MarkNotified(ctx context.Context, userID int64, day time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, ledgerKey(userID, day), time.Now().UTC().Format(time.RFC3339), ledgerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	return ok, nil
}

// Forget drops a marker so a failed notification can be retried.
func (l *RedisLedger) Forget(ctx context.Context, userID int64, day time.Time) error {
	if err := l.client.Del(ctx, ledgerKey(userID, day)).Err(); err != nil {
		return fmt.Errorf("forget notified: %w", err)
	}
	return nil
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}

// MemoryLedger is the in-process ledger used when no redis is configured.
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]time.Time)}
}

func (l *MemoryLedger) MarkNotified(_ context.Context, userID int64, day time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, at := range l.seen {
		if now.Sub(at) > ledgerTTL {
			delete(l.seen, k)
		}
	}

	key := ledgerKey(userID, day)
	if _, ok := l.seen[key]; ok {
		return false, nil
	}
	l.seen[key] = now
	return true, nil
}

func (l *MemoryLedger) Forget(_ context.Context, userID int64, day time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.seen, ledgerKey(userID, day))
	return nil
}
