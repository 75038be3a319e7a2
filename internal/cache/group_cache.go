// internal/cache/group_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"fairsplit/internal/domain"
)

// GroupCache holds group-with-members snapshots between reads.
//
// Each group carries a version that Invalidate bumps. Get reports the version
// seen with the snapshot or the miss; Set stores a snapshot only while that
// version is current, so a fill that raced a committed write is dropped.
// Every write to a group must call Invalidate before responding.
type GroupCache interface {
	Get(ctx context.Context, groupID int64) (group *domain.GroupWithMembers, version int64, hit bool, err error)
	// Set stores group if its version is still version. It reports whether it did.
	Set(ctx context.Context, group *domain.GroupWithMembers, version int64) (bool, error)
	Invalidate(ctx context.Context, groupID int64) error
}

// NewRedisClient parses url and verifies the server answers.
// It returns nil when url is empty (cache disabled).
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// setIfVersion writes KEYS[1] = ARGV[2] with a PX of ARGV[3] only while
// KEYS[2] (missing counts as 0) still equals ARGV[1].
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if current == false then current = "0" end
if current ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisGroupCache stores snapshots as JSON under "group:<id>:members" and the
// version counter under "group:<id>:version".
// Version keys never expire, so a stalled fill cannot match a recycled counter.
type RedisGroupCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// DefaultTTL is used when NewRedisGroupCache is given a non-positive TTL.
const DefaultTTL = 30 * time.Second

// NewRedisGroupCache creates a RedisGroupCache with the given entry TTL.
func NewRedisGroupCache(rdb *redis.Client, ttl time.Duration) *RedisGroupCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGroupCache{rdb: rdb, ttl: ttl}
}

func groupKey(groupID int64) string {
	return fmt.Sprintf("group:%d:members", groupID)
}

func versionKey(groupID int64) string {
	return fmt.Sprintf("group:%d:version", groupID)
}

func (c *RedisGroupCache) Get(ctx context.Context, groupID int64) (*domain.GroupWithMembers, int64, bool, error) {
	// MGET reads both keys atomically.
	vals, err := c.rdb.MGet(ctx, versionKey(groupID), groupKey(groupID)).Result()
	if err != nil {
		return nil, 0, false, err
	}

	version, err := parseVersion(vals[0])
	if err != nil {
		return nil, 0, false, err
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, version, false, nil
	}
	var group domain.GroupWithMembers
	if err := json.Unmarshal([]byte(raw), &group); err != nil {
		return nil, version, false, err
	}
	return &group, version, true, nil
}

func (c *RedisGroupCache) Set(ctx context.Context, group *domain.GroupWithMembers, version int64) (bool, error) {
	b, err := json.Marshal(group)
	if err != nil {
		return false, err
	}
	stored, err := setIfVersion.Run(ctx, c.rdb,
		[]string{groupKey(group.ID), versionKey(group.ID)},
		strconv.FormatInt(version, 10), b, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the version and drops the snapshot in one MULTI block.
func (c *RedisGroupCache) Invalidate(ctx context.Context, groupID int64) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(groupID))
		pipe.Del(ctx, groupKey(groupID))
		return nil
	})
	return err
}

func parseVersion(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, errors.New("unexpected version type")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse group cache version: %w", err)
	}
	return n, nil
}

// Noop is the GroupCache used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, int64) (*domain.GroupWithMembers, int64, bool, error) {
	return nil, 0, false, nil
}

func (Noop) Set(context.Context, *domain.GroupWithMembers, int64) (bool, error) { return false, nil }

func (Noop) Invalidate(context.Context, int64) error { return nil }
