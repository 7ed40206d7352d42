package cache

import (
	"context"
	"time"
)

// Cache stores values in per-owner buckets (every availability entry of a
// shop, for instance). A bucket is invalidated by moving it to a new
// generation: entries written under an older generation are never read
// again and expire on their own TTL.
type Cache interface {
	Generation(ctx context.Context, bucket string) (int64, error)
	Get(ctx context.Context, bucket string, gen int64, field string) ([]byte, bool, error)
	Set(ctx context.Context, bucket string, gen int64, field string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, bucket string) error
}

type NoopCache struct{}

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) Generation(ctx context.Context, bucket string) (int64, error) {
	return 0, nil
}

func (n *NoopCache) Get(ctx context.Context, bucket string, gen int64, field string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *NoopCache) Set(ctx context.Context, bucket string, gen int64, field string, value []byte, ttl time.Duration) error {
	return nil
}

func (n *NoopCache) Invalidate(ctx context.Context, bucket string) error {
	return nil
}
