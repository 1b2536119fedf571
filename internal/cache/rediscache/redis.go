package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edgestore/customerstore/internal/cache"
	"github.com/edgestore/customerstore/internal/errors"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
}

// New returns a new Redis cache store.
func New(client *redis.Client) *Redis {
	return &Redis{client}
}

func (c *Redis) Get(ctx context.Context, key string, value interface{}) error {
	const op errors.Op = "rediscache/Redis.Get"

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		switch {
		case err == redis.Nil:
			return errors.E(op, errors.NotFound)
		default:
			return errors.E(op, err, errors.IO)
		}
	}

	if err := json.Unmarshal(data, value); err != nil {
		return errors.E(op, err, errors.Internal)
	}

	return nil
}

func (c *Redis) Set(ctx context.Context, key string, value interface{}, expires time.Duration) error {
	const op errors.Op = "rediscache/Redis.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return errors.E(op, err, errors.Internal)
	}

	if _, err := c.client.Set(ctx, key, raw, expires).Result(); err != nil {
		return errors.E(op, err, errors.IO)
	}

	return nil
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	const op errors.Op = "rediscache/Redis.Delete"

	if _, err := c.client.Del(ctx, key).Result(); err != nil {
		return errors.E(op, err, errors.IO)
	}

	return nil
}

// Flush deletes all items from client asynchronous
func (c *Redis) Flush(ctx context.Context) error {
	const op errors.Op = "rediscache/Redis.Flush"
	if _, err := c.client.FlushAllAsync(ctx).Result(); err != nil {
		return errors.E(op, errors.IO, err)
	}

	return nil
}

// Run checks that the server is reachable.
func (c *Redis) Run() error {
	if _, err := c.client.Ping(context.Background()).Result(); err != nil {
		return err
	}

	return nil
}

// Shutdown closes the client. The server itself is left running.
func (c *Redis) Shutdown() error {
	return c.client.Close()
}

var _ cache.Service = (*Redis)(nil)
