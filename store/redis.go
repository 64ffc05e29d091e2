package store

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// Redis stores blobs as plain Redis strings without expiry.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client. The caller keeps ownership of the
// connection settings; Close closes the client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errStorage.Fmt(addr).Wrap(err)
	}

	return NewRedis(client), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, errStorage.Fmt(key).Wrap(err)
	}

	return b, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errStorage.Fmt(key).Wrap(err)
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errStorage.Fmt(key).Wrap(err)
	}

	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
