package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/pkg/retry"
)

// storeIfNewer writes the snapshot only when its version is greater than the
// cached one, so snapshots delivered out of order never move the cache back.
//
// KEYS[1] snapshot hash; ARGV[1] version; ARGV[2] JSON; ARGV[3] TTL ms (0 = none).
// Returns 1 when written, 0 when a newer or equal version is cached.
var storeIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'snapshot', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// Scripter is the part of a go-redis client the cache uses.
type Scripter interface {
	redis.Scripter
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// SnapshotCache projects the latest committed snapshot of each profile.
type SnapshotCache struct {
	client Scripter
	keys   Keys
	ttl    time.Duration
}

// NewSnapshotCache creates the cache.
func NewSnapshotCache(client Scripter, keyPrefix string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, keys: Keys{Prefix: keyPrefix}, ttl: ttl}
}

// Store caches p unless a snapshot with the same or a later version is
// already cached. It reports whether the cache was written.
func (c *SnapshotCache) Store(ctx context.Context, p *profile.StudentProfile) (bool, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return false, retry.Permanent(fmt.Errorf("%w: %v", ErrCacheSerialization, err))
	}

	written, err := storeIfNewer.Run(ctx, c.client,
		[]string{c.keys.Snapshot(p.ID)},
		p.Version, data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, retry.Retryable(fmt.Errorf("cache snapshot %s v%d: %w", p.ID, p.Version, err))
	}
	return written == 1, nil
}

// Load returns the cached snapshot of profileID.
func (c *SnapshotCache) Load(ctx context.Context, profileID string) (*profile.StudentProfile, error) {
	data, err := c.client.HGet(ctx, c.keys.Snapshot(profileID), "snapshot").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var p profile.StudentProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return &p, nil
}

// Version returns the cached version of profileID, or 0 when nothing is cached.
func (c *SnapshotCache) Version(ctx context.Context, profileID string) (int64, error) {
	v, err := c.client.HGet(ctx, c.keys.Snapshot(profileID), "version").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}
