package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, "test:"), mr
}

func TestStateTracker_ExecOnce(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	require.NoError(t, tr.Exec(ctx, "job-1", fn, WithStateTTL(time.Hour)))
	assert.ErrorIs(t, tr.Exec(ctx, "job-1", fn), ErrAlreadyCompleted)
	assert.Equal(t, 1, calls)

	v, err := mr.Get("test:job-1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted.String(), v)
}

func TestStateTracker_InProgress(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	state, err := tr.Acquire(ctx, "job-2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	err = tr.Exec(ctx, "job-2", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
}

func TestStateTracker_FailureRecordedOrReleased(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()
	boom := errors.New("smtp down")

	err := tr.Exec(ctx, "job-3", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, tr.Exec(ctx, "job-3", func(context.Context) error { return nil }), ErrAlreadyFailed)

	err = tr.Exec(ctx, "job-4", func(context.Context) error { return boom }, WithReleaseOnFailure())
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:job-4"))
	assert.NoError(t, tr.Exec(ctx, "job-4", func(context.Context) error { return nil }))
}

func TestStateTracker_LockExpires(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()

	_, err := tr.Acquire(ctx, "job-5", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	state, err := tr.Acquire(ctx, "job-5", time.Second)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)
}

func TestStateTracker_InvalidState(t *testing.T) {
	tr, mr := newTracker(t)
	require.NoError(t, mr.Set("test:job-6", "garbage"))

	state, err := tr.Acquire(context.Background(), "job-6", time.Minute)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateError, state)
}
