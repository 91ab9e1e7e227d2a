package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	setNXResult bool
	setNXKey    string
	setNXValue  any

	releaseCalled bool
	releaseCtxErr error
	releaseToken  string
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	f.setNXKey = key
	f.setNXValue = value
	return redis.NewBoolResult(f.setNXResult, nil)
}

func (f *fakeRedis) EvalSha(ctx context.Context, _ string, _ []string, args ...any) *redis.Cmd {
	f.releaseCalled = true
	f.releaseCtxErr = ctx.Err()
	if len(args) > 0 {
		f.releaseToken, _ = args[0].(string)
	}
	return redis.NewCmdResult(int64(1), nil)
}

func (f *fakeRedis) Eval(ctx context.Context, _ string, _ []string, _ ...any) *redis.Cmd {
	return redis.NewCmdResult(int64(1), nil)
}

func (f *fakeRedis) EvalRO(ctx context.Context, _ string, _ []string, _ ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, nil)
}

func (f *fakeRedis) EvalShaRO(ctx context.Context, _ string, _ []string, _ ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, nil)
}

func (f *fakeRedis) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult([]bool{true}, nil)
}

func (f *fakeRedis) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func TestWithDoctorDayLock_RunsAndReleases(t *testing.T) {
	fake := &fakeRedis{setNXResult: true}
	l := &doctorDayLocker{client: fake, ttl: time.Second}
	doctorID := uuid.New()

	ran := false
	err := l.WithDoctorDayLock(context.Background(), doctorID, "2025-04-01", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	assert.Equal(t, "lock:booking:"+doctorID.String()+":2025-04-01", fake.setNXKey)
	assert.Equal(t, fake.setNXValue, fake.releaseToken, "release must use the acquisition token")
}

func TestWithDoctorDayLock_HeldLock(t *testing.T) {
	fake := &fakeRedis{setNXResult: false}
	l := &doctorDayLocker{client: fake, ttl: time.Second}

	err := l.WithDoctorDayLock(context.Background(), uuid.New(), "2025-04-01", func(ctx context.Context) error {
		t.Fatal("critical section must not run when the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.False(t, fake.releaseCalled, "a lock we never took must not be released")
}

func TestWithDoctorDayLock_ReleasesAfterCallerCancelled(t *testing.T) {
	fake := &fakeRedis{setNXResult: true}
	l := &doctorDayLocker{client: fake, ttl: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	err := l.WithDoctorDayLock(ctx, uuid.New(), "2025-04-01", func(fnCtx context.Context) error {
		cancel()
		<-fnCtx.Done()
		return fnCtx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)

	require.True(t, fake.releaseCalled, "lock must still be released")
	assert.NoError(t, fake.releaseCtxErr, "release must not run on the caller's dead context")
}

func TestNopLocker(t *testing.T) {
	ran := false
	err := NopLocker{}.WithDoctorDayLock(context.Background(), uuid.New(), "2025-04-01", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}
