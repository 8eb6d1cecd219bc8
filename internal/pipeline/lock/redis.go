package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "labfhir/pkg/domain"
)

const lockKeyPrefix = "report-lock:"

// releaseScript deletes the lock only when the stored token matches, so an
// instance that lost its lock to TTL expiry cannot release a successor's.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker coordinates per-report locks across instances with SET NX PX.
// The TTL bounds how long a crashed holder can block a report; live holders
// are expected to finish well inside it.
type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
}

// RedisLockerOption configures a RedisLocker.
type RedisLockerOption func(*RedisLocker)

// WithTTL overrides the lock expiry.
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.ttl = ttl
	}
}

// WithRetryInterval overrides the polling interval for contended locks.
func WithRetryInterval(d time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.retryInterval = d
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

// NewRedis constructs a Redis-backed report locker.
func NewRedis(client *redis.Client, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client:        client,
		ttl:           30 * time.Second,
		retryInterval: 50 * time.Millisecond,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, reportID id.ReportID) (func(), error) {
	key := lockKeyPrefix + reportID.String()
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire report lock: %w", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-time.After(l.retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// release runs on its own short deadline: the caller's context is usually
// already done or about to be when a lock is released.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("failed to release report lock", "key", key, "error", err)
	}
}
