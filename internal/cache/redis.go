package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps one key per entry, each with its own TTL, named
// <prefix>:<bucket>:<generation>:<field>. The generation counter lives in
// <prefix>:<bucket>:gen.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) key(bucket string) string {
	if r.prefix == "" {
		return bucket
	}
	return r.prefix + ":" + bucket
}

func (r *RedisCache) genKey(bucket string) string {
	return r.key(bucket) + ":gen"
}

func (r *RedisCache) entryKey(bucket string, gen int64, field string) string {
	return r.key(bucket) + ":" + strconv.FormatInt(gen, 10) + ":" + field
}

func (r *RedisCache) Generation(ctx context.Context, bucket string) (int64, error) {
	gen, err := r.client.Get(ctx, r.genKey(bucket)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *RedisCache) Get(ctx context.Context, bucket string, gen int64, field string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.entryKey(bucket, gen, field)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set with ttl <= 0 keeps the entry until the bucket is invalidated.
func (r *RedisCache) Set(ctx context.Context, bucket string, gen int64, field string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.entryKey(bucket, gen, field), value, ttl).Err()
}

func (r *RedisCache) Invalidate(ctx context.Context, bucket string) error {
	return r.client.Incr(ctx, r.genKey(bucket)).Err()
}
