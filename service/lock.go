package service

import (
	"context"
	"fmt"
	"time"

	"accountability/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a best-effort Redis mutex. A nil Locker always succeeds; the
// database transaction remains the real guard.
type Locker struct {
	rdb      *redis.Client
	ttl      time.Duration
	attempts int
	wait     time.Duration
}

func NewLocker(rdb *redis.Client) *Locker {
	if rdb == nil {
		return nil
	}
	return &Locker{rdb: rdb, ttl: 5 * time.Second, attempts: 20, wait: 50 * time.Millisecond}
}

// Acquire blocks until the key is held or gives up with ErrBusy, either
// because the attempts ran out or ctx is done. The returned release func is
// always safe to call.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}

	token := uuid.NewString()
	for i := 0; i < l.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return func() {}, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			// Redis trouble should not block the write path.
			utils.Logger().Warn("lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() {
				if err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
					utils.Logger().Warn("lock release failed", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return func() {}, fmt.Errorf("%w: %w", ErrBusy, ctx.Err())
		case <-time.After(l.wait):
		}
	}
	return func() {}, ErrBusy
}
