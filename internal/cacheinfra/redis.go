package cacheinfra

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/zcong1993/go-record-cache/cache"
)

// Redis adapts a redis client to cache.Backend. Payloads are stored as
// raw strings with the TTL handed to SET; redis.Nil maps to a miss.
// The caller owns the client lifecycle.
type Redis struct {
	client redis.UniversalClient
	cfg    Config
}

var _ cache.Backend = (*Redis)(nil)

// NewRedis returns a Redis-backed cache.Backend using the provided client.
func NewRedis(client redis.UniversalClient, cfg Config) (*Redis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Redis{client: client, cfg: cfg}, nil
}

func (r *Redis) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, r.cfg.QueryTimeout)
}

func (r *Redis) prefixKey(key string) string {
	if r.cfg.Prefix == "" {
		return key
	}
	return r.cfg.Prefix + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) (bool, []byte, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	data, err := r.client.Get(qctx, r.prefixKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, errors.Wrap(err, "cacheinfra: redis get")
	}
	return true, data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.MinTTL
	}
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	if err := r.client.Set(qctx, r.prefixKey(key), value, ttl).Err(); err != nil {
		return errors.Wrap(err, "cacheinfra: redis set")
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefixKey(key)
	}
	if err := r.client.Del(qctx, prefixed...).Err(); err != nil {
		return errors.Wrap(err, "cacheinfra: redis delete")
	}
	return nil
}
