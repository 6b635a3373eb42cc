package redisstore_test

import (
	"context"
	"testing"
	"time"

	redisstore "marketdata-collector/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLock(t *testing.T) (*redisstore.Lock, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.New(client, time.Hour), mr
}

func TestTryLock_ExclusiveUntilReleased(t *testing.T) {
	lock, _ := newLock(t)
	ctx := context.Background()

	unlock, ok, err := lock.TryLock(ctx, "lock:equities")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lock.TryLock(ctx, "lock:equities")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = lock.TryLock(ctx, "lock:forex")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, unlock(ctx))
	_, ok, err = lock.TryLock(ctx, "lock:equities")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTryLock_ExpiredLockNotReleasedByOldOwner(t *testing.T) {
	lock, mr := newLock(t)
	ctx := context.Background()

	unlock, ok, err := lock.TryLock(ctx, "lock:crypto")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Hour)
	_, ok, err = lock.TryLock(ctx, "lock:crypto")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, unlock(ctx))
	require.True(t, mr.Exists("lock:crypto"))
}

func TestTryLock_BackendDown(t *testing.T) {
	lock, mr := newLock(t)
	mr.Close()
	_, ok, err := lock.TryLock(context.Background(), "lock:macro")
	require.Error(t, err)
	require.False(t, ok)
}
