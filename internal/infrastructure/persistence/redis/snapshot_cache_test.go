package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/wellness-hub/internal/domain/profile"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "wellness:profile:p-1", Keys{Prefix: "wellness:"}.Snapshot("p-1"))
}

// TestSnapshotCache_Redis runs against a real server when
// WELLNESS_TEST_REDIS_ADDR is set.
func TestSnapshotCache_Redis(t *testing.T) {
	addr := os.Getenv("WELLNESS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WELLNESS_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Addr = addr
	client, err := NewClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	prefix := "wellness-test:" + uuid.NewString() + ":"
	cache := NewSnapshotCache(client, prefix, time.Minute)
	defer client.Del(ctx, Keys{Prefix: prefix}.Snapshot("p-1"))

	_, err = cache.Load(ctx, "p-1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p, err := profile.NewStudentProfile(profile.NewProfileParams{ID: "p-1", Name: "Asha", Email: "a@x.edu", Now: now})
	require.NoError(t, err)
	p.Touch(now)
	p.Touch(now)

	written, err := cache.Store(ctx, p)
	require.NoError(t, err)
	assert.True(t, written)

	stale := p.Clone()
	stale.Version = 2
	stale.Name = "stale"
	written, err = cache.Store(ctx, stale)
	require.NoError(t, err)
	assert.False(t, written)

	got, err := cache.Load(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, p.Version, got.Version)

	v, err := cache.Version(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}
