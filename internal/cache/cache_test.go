package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, zap.NewNop()), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	var out payload
	found, err := c.Get(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", payload{Name: "a", Count: 2}, time.Minute))
	found, err = c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 2}, out)
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "a"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var out payload
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Version(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	assert.Equal(t, int64(0), c.GetVersion(ctx, "documents:version"))
	c.IncrementVersion(ctx, "documents:version")
	c.IncrementVersion(ctx, "documents:version")
	assert.Equal(t, int64(2), c.GetVersion(ctx, "documents:version"))
}

func TestCache_WithoutRedis(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Cache{nil, New(nil, zap.NewNop())} {
		var out payload
		found, err := c.Get(ctx, "k", &out)
		assert.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, c.Set(ctx, "k", payload{}, time.Minute))
		assert.Equal(t, int64(0), c.GetVersion(ctx, "v"))
		c.IncrementVersion(ctx, "v")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Nil(t, Connect(ctx, "127.0.0.1:1", zap.NewNop()))
}
