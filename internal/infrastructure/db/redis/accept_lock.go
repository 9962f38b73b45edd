package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const acceptLockTTL = 30 * time.Second

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcceptLock marks an order acceptance as in flight.
// Key format: accept:<order_id>, value: a per-acquire token.
type AcceptLock struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

// NewAcceptLock creates an AcceptLock wrapping the given Redis client. The
// lock expires on its own after ttl; a non-positive ttl uses the default.
func NewAcceptLock(client *redis.Client, ttl time.Duration) *AcceptLock {
	if ttl <= 0 {
		ttl = acceptLockTTL
	}
	return &AcceptLock{client: client, ttl: ttl, tokens: make(map[string]string)}
}

// Acquire reports whether the caller now holds the lock for orderID.
func (l *AcceptLock) Acquire(ctx context.Context, orderID string) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(orderID), token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("accept lock: %w", err)
	}
	if ok {
		l.mu.Lock()
		l.tokens[orderID] = token
		l.mu.Unlock()
	}
	return ok, nil
}

// Release drops the lock if it is still the one this AcceptLock acquired. A
// lock that expired and was taken by another holder is left alone.
func (l *AcceptLock) Release(ctx context.Context, orderID string) error {
	l.mu.Lock()
	token, ok := l.tokens[orderID]
	delete(l.tokens, orderID)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.key(orderID)}, token).Err(); err != nil {
		return fmt.Errorf("accept lock release: %w", err)
	}
	return nil
}

func (l *AcceptLock) key(orderID string) string {
	return "accept:" + orderID
}
