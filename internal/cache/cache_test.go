package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := newMemory()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", "v", time.Minute)
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	c.Delete(ctx, "k")
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newMemory()
	ctx := context.Background()

	c.Set(ctx, "k", "v", -time.Second)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	// The expired entry is dropped on read.
	c.mu.RLock()
	_, still := c.entries["k"]
	c.mu.RUnlock()
	assert.False(t, still)
}

func TestNewFallsBackWithoutRedis(t *testing.T) {
	assert.IsType(t, &memoryCache{}, New(""))
	assert.IsType(t, &memoryCache{}, New("not-a-redis-url"))
}
