package storage

import (
	"context"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/licensetower/pkg/errors"
)

const redisPrefix = "licensetower:"

// Redis stores each blob as a string key without expiry. Expiry of the
// entries inside a blob is the cache's business, not Redis'.
type Redis struct {
	client *redis.Client
}

// OpenRedis connects to the server described by a redis:// URL and pings it.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to redis")
	}
	return &Redis{client: client}, nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis { return &Redis{client: client} }

// Get reads the blob stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}
	return data, true, nil
}

// Update replaces the blob stored under key.
func (r *Redis) Update(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, redisPrefix+key, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }

var _ Store = (*Redis)(nil)
