package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Locker is the per-subject mutual-exclusion capability. Acquire blocks
// until the key lock is held or ctx is done; the returned function releases
// the lock and must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemoryLocker is an in-process mutex map for single-instance deployments
// and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[key] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RedisLocker is a distributed lock for multi-instance deployments:
// SET NX PX with an owner token, polling acquire, owner-checked release.
type RedisLocker struct {
	client   *redis.Client
	ttl      time.Duration
	pollWait time.Duration
}

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client:   client,
		ttl:      ttl,
		pollWait: 100 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	lockKey := "lock:" + key

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Release must not depend on the (possibly cancelled)
				// acquisition context.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.client, []string{lockKey}, token).Err(); err != nil {
					logger.Error("Failed to release distributed lock", err, map[string]interface{}{
						"key": key,
					})
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.pollWait):
		}
	}
}
