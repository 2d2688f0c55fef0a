//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestIntegrationRedisClient(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7.4-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminating redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	c, err := NewRedisClient(ctx, RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port()), Prefix: "test:"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, KeyProducts)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, KeyProducts, []byte("[]"), time.Minute))
	got, err := c.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), got)

	for _, s := range []string{"home", "about", "footer"} {
		require.NoError(t, c.Set(ctx, ContentKey(s), []byte("{}"), time.Minute))
	}
	require.NoError(t, c.DeleteByPrefix(ctx, "site_content:"))
	_, err = c.Get(ctx, ContentKey("about"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	gen, err := c.Generation(ctx, KeyProducts)
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, KeyProducts))
	_, err = c.Get(ctx, KeyProducts)
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := c.SetIfGeneration(ctx, KeyProducts, gen, []byte("[]"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "fill started before the delete must be dropped")
	_, err = c.Get(ctx, KeyProducts)
	assert.ErrorIs(t, err, ErrCacheMiss)

	gen, err = c.Generation(ctx, ContentKey("footer"))
	require.NoError(t, err)
	require.NoError(t, c.DeleteByPrefix(ctx, "site_content:"))
	ok, err = c.SetIfGeneration(ctx, ContentKey("footer"), gen, []byte("{}"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err = c.Generation(ctx, ContentKey("footer"))
	require.NoError(t, err)
	ok, err = c.SetIfGeneration(ctx, ContentKey("footer"), gen, []byte("{}"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
