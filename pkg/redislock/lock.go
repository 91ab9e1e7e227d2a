package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("booking lock not acquired")

// Locker guards the check-then-persist section of a booking per doctor per
// date, so two concurrent requests cannot both pass a conflict check against
// a pool that does not yet contain the other's booking.
type Locker interface {
	WithDoctorDayLock(ctx context.Context, doctorID uuid.UUID, date string, fn func(ctx context.Context) error) error
}

// redisClient is the slice of redis.Client the locker needs.
type redisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

type doctorDayLocker struct {
	client redisClient
	ttl    time.Duration
}

// NewDoctorDayLocker creates a locker keyed by doctor and calendar date.
func NewDoctorDayLocker(client *redis.Client, ttl time.Duration) Locker {
	return &doctorDayLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *doctorDayLocker) WithDoctorDayLock(ctx context.Context, doctorID uuid.UUID, date string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:booking:%s:%s", doctorID.String(), date)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire booking lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	// Release on a fresh context: when fn fails because the caller's ctx was
	// cancelled, releasing on that same ctx would leave the lock held until
	// its TTL expires.
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.release(releaseCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *doctorDayLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release booking lock: %w", err)
	}
	return nil
}

// NopLocker runs the critical section without any locking. Used when Redis
// is not configured; conflict checks still run, they just lose the
// cross-process guard.
type NopLocker struct{}

func (NopLocker) WithDoctorDayLock(ctx context.Context, _ uuid.UUID, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
