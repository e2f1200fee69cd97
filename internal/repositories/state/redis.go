package state

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-ficha/internal/redis"
)

const (
	// Key pattern: ficha:{key}, a hash with value and updated_at fields
	defaultKeyPrefix = "ficha:"

	fieldValue     = "value"
	fieldUpdatedAt = "updated_at"

	scanCount = 100

	errKeyEmpty = "key cannot be empty"
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock

	// KeyPrefix namespaces every key; defaults to "ficha:"
	KeyPrefix string
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	prefix string
}

// NewRedisRepository creates a Redis backed state repository
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		prefix: prefix,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Get reads one key
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	fields, err := r.client.HGetAll(ctx, r.buildKey(input.Key)).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get state from Redis")
	}
	if len(fields) == 0 {
		return nil, errors.NotFoundf("state %s not found", input.Key)
	}

	return &GetOutput{Entry: toEntry(input.Key, fields)}, nil
}

// Put writes one key
func (r *redisRepository) Put(ctx context.Context, input PutInput) (*PutOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	now := r.clock.Now()
	key := r.buildKey(input.Key)

	// replace the hash as a unit
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		fieldValue, input.Value,
		fieldUpdatedAt, strconv.FormatInt(now.UnixMilli(), 10))

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to store state in Redis")
	}

	return &PutOutput{Entry: &Entry{
		Key:       input.Key,
		Value:     append([]byte(nil), input.Value...),
		UpdatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}}, nil
}

// Delete removes one key
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	n, err := r.client.Del(ctx, r.buildKey(input.Key)).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete state from Redis")
	}

	return &DeleteOutput{Deleted: n > 0}, nil
}

// List scans every key under the prefix
func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to scan state keys")
	}
	sort.Strings(keys)

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if len(keys) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read state entries")
		}
	}

	out := &ListOutput{Entries: make([]*Entry, 0, len(keys))}
	for i, key := range keys {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		out.Entries = append(out.Entries, toEntry(strings.TrimPrefix(key, r.prefix), fields))
	}

	return out, nil
}

func (r *redisRepository) buildKey(key string) string {
	return r.prefix + key
}

func toEntry(key string, fields map[string]string) *Entry {
	entry := &Entry{
		Key:   key,
		Value: []byte(fields[fieldValue]),
	}
	if ms, err := strconv.ParseInt(fields[fieldUpdatedAt], 10, 64); err == nil {
		entry.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	return entry
}
