package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RebuildLock serializes cache rebuild runs across server instances. A full
// rebuild scans the whole ledger, so overlapping runs only waste work and
// fight over the same cache rows.
type RebuildLock struct {
	client *redis.Client
	key    string
}

// NewRebuildLock creates a RebuildLock.
func NewRebuildLock(client *redis.Client) *RebuildLock {
	return &RebuildLock{
		client: client,
		key:    "saldo:rebuild:lock",
	}
}

// Acquire tries to take the lock, tagging it with the run ID that holds it.
// Returns false if another run holds the lock.
func (l *RebuildLock) Acquire(ctx context.Context, runID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.key, runID, ttl).Result()
}

// Release frees the lock if it is still held by runID. A lock that expired
// and was re-acquired by another run is left alone.
func (l *RebuildLock) Release(ctx context.Context, runID string) error {
	held, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if held != runID {
		return nil
	}
	return l.client.Del(ctx, l.key).Err()
}

// Holder reports the run ID currently holding the lock, or "" when free.
func (l *RebuildLock) Holder(ctx context.Context) (string, error) {
	held, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return held, err
}
