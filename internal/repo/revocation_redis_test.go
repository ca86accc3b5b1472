package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/auth_service/internal/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRevocations(t *testing.T) (*RedisRevocations, *testClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := &testClock{t: time.Unix(1_700_000_000, 0)}
	store := NewRedisRevocations(rdb, "test")
	store.Now = clk.Now
	return store, clk
}

func TestRedisRevocations_IsRevoked(t *testing.T) {
	store, clk := newRedisRevocations(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddRevocation(ctx, "tok", clk.Now().Add(time.Minute), token.KindAccess))
	revoked, err = store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	kind, err := store.Client.HGet(ctx, store.kindKey(), token.Digest("tok")).Result()
	require.NoError(t, err)
	assert.Equal(t, "access", kind)

	clk.Advance(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entry is treated as absent before purge")
}

func TestRedisRevocations_Claim(t *testing.T) {
	store, clk := newRedisRevocations(t)
	ctx := context.Background()
	exp := clk.Now().Add(time.Hour)

	created, err := store.ClaimRevocation(ctx, "tok", exp, token.KindRefresh)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.ClaimRevocation(ctx, "tok", exp, token.KindRefresh)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, store.AddRevocation(ctx, "tok", exp, token.KindRefresh), "duplicates are tolerated")
}

func TestRedisRevocations_ClaimIsExclusive(t *testing.T) {
	store, clk := newRedisRevocations(t)
	ctx := context.Background()
	exp := clk.Now().Add(time.Hour)

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := store.ClaimRevocation(ctx, "contended", exp, token.KindRefresh)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRedisRevocations_PurgeExpired(t *testing.T) {
	store, clk := newRedisRevocations(t)
	ctx := context.Background()
	now := clk.Now()

	require.NoError(t, store.AddRevocation(ctx, "old", now.Add(-time.Hour), token.KindAccess))
	require.NoError(t, store.AddRevocation(ctx, "edge", now, token.KindAccess))
	require.NoError(t, store.AddRevocation(ctx, "live", now.Add(time.Hour), token.KindRefresh))

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	exists, err := store.Client.HExists(ctx, store.kindKey(), token.Digest("old")).Result()
	require.NoError(t, err)
	assert.False(t, exists)

	n, err = store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisRevocations_KeysShareHashTag(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisRevocations(rdb, "auth-svc")
	assert.Equal(t, "{auth-svc}:revoked", store.expiryKey())
	assert.Equal(t, "{auth-svc}:revoked:kind", store.kindKey())

	require.NoError(t, store.AddRevocation(context.Background(), "tok", time.Now().Add(time.Hour), token.KindAccess))
	assert.True(t, mr.Exists("{auth-svc}:revoked"))
	assert.True(t, mr.Exists("{auth-svc}:revoked:kind"))
}
