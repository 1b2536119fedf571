package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edgestore/customerstore/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct {
	EmailAddress string `json:"email_address"`
	Confirmed    bool   `json:"confirmed"`
}

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	c := New(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	t.Cleanup(func() { c.Shutdown() })
	return c, server
}

func TestRedis_SetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedis(t)

	require.NoError(t, c.Run())
	require.NoError(t, c.Set(ctx, "customerstore:acme:abc", view{EmailAddress: "john@doe.com", Confirmed: true}, 0))

	var got view
	require.NoError(t, c.Get(ctx, "customerstore:acme:abc", &got))
	assert.Equal(t, view{EmailAddress: "john@doe.com", Confirmed: true}, got)
}

func TestRedis_NotFound(t *testing.T) {
	c, _ := newRedis(t)

	var got view
	err := c.Get(context.Background(), "missing", &got)
	assert.True(t, errors.Is(errors.NotFound, err))
}

func TestRedis_Expires(t *testing.T) {
	ctx := context.Background()
	c, server := newRedis(t)

	require.NoError(t, c.Set(ctx, "k", view{}, time.Minute))
	server.FastForward(2 * time.Minute)

	var got view
	assert.True(t, errors.Is(errors.NotFound, c.Get(ctx, "k", &got)))
}

func TestRedis_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c, server := newRedis(t)

	require.NoError(t, c.Set(ctx, "a", view{}, 0))
	require.NoError(t, c.Set(ctx, "b", view{}, 0))

	require.NoError(t, c.Delete(ctx, "a"))
	assert.False(t, server.Exists("a"))
	assert.True(t, server.Exists("b"))

	require.NoError(t, c.Flush(ctx))
	assert.False(t, server.Exists("b"))
}

func TestRedis_Unreachable(t *testing.T) {
	c := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	defer c.Shutdown()

	assert.Error(t, c.Run())

	var got view
	assert.True(t, errors.Is(errors.IO, c.Get(context.Background(), "k", &got)))
}
