package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
)

func newTestLockFactory(t *testing.T) *LockFactory {
	t.Helper()
	client, _ := newTestClient(t)
	return NewLockFactory(client, logging.NewNopLogger(), "test:")
}

func TestProjectLock_AcquireAndRelease(t *testing.T) {
	factory := newTestLockFactory(t)
	ctx := context.Background()

	lock := factory.ForProject("proj-1")
	require.NoError(t, lock.Lock(ctx))
	assert.NoError(t, lock.Unlock(ctx))
}

func TestProjectLock_SecondHolderBlocked(t *testing.T) {
	factory := newTestLockFactory(t)
	ctx := context.Background()

	first := factory.ForProject("proj-1")
	require.NoError(t, first.Lock(ctx))

	second := factory.ForProject("proj-1")
	ok, err := second.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Unlock(ctx))
	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProjectLock_DifferentProjectsIndependent(t *testing.T) {
	factory := newTestLockFactory(t)
	ctx := context.Background()

	require.NoError(t, factory.ForProject("proj-1").Lock(ctx))

	ok, err := factory.ForProject("proj-2").TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProjectLock_UnlockNotHeld(t *testing.T) {
	factory := newTestLockFactory(t)
	ctx := context.Background()

	first := factory.ForProject("proj-1")
	require.NoError(t, first.Lock(ctx))

	// A different owner must not be able to release the lock.
	second := factory.ForProject("proj-1")
	assert.ErrorIs(t, second.Unlock(ctx), ErrLockNotHeld)
}

func TestProjectLock_LockRetriesExhausted(t *testing.T) {
	factory := newTestLockFactory(t)
	ctx := context.Background()

	require.NoError(t, factory.ForProject("proj-1").Lock(ctx))

	contender := factory.ForProject("proj-1",
		WithRetryCount(2),
		WithRetryDelay(time.Millisecond),
	)
	assert.ErrorIs(t, contender.Lock(ctx), ErrLockNotAcquired)
}

func TestProjectLock_Extend(t *testing.T) {
	factory := newTestLockFactory(t)
	ctx := context.Background()

	lock := factory.ForProject("proj-1", WithLockTTL(time.Second))
	require.NoError(t, lock.Lock(ctx))

	ok, err := lock.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Extending a lock held by someone else fails.
	other := factory.ForProject("proj-1")
	ok, err = other.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
