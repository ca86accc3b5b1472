package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/token"
)

type countingStore struct {
	RevocationStore
	purges atomic.Int32
	err    error
}

func (s *countingStore) PurgeExpired(context.Context) (int64, error) {
	s.purges.Add(1)
	return 1, s.err
}

func TestJanitor_RunsUntilCancelled(t *testing.T) {
	store := &countingStore{}
	j := &Janitor{Revocations: store, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.purges.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitor_KeepsRunningAfterError(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	j := &Janitor{Revocations: store, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	require.Eventually(t, func() bool { return store.purges.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestJanitor_DisabledInterval(t *testing.T) {
	store := &countingStore{}
	j := &Janitor{Revocations: store}

	j.Run(context.Background())
	assert.Zero(t, store.purges.Load())
}

func TestJanitor_PurgesGormStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clk.Now()

	require.NoError(t, env.repo.AddRevocation(ctx, "stale", now.Add(-time.Second), token.KindAccess))
	require.NoError(t, env.repo.AddRevocation(ctx, "fresh", now.Add(time.Minute), token.KindAccess))

	j := &Janitor{Revocations: env.repo, Interval: time.Hour}
	j.runOnce(ctx, slog.Default())

	revoked, err := env.repo.IsRevoked(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := env.repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
