package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok := c.TryGet(ctx, "missing")
	assert.False(t, ok)

	c.TrySet(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.TryGet(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	// overwrite wins
	c.TrySet(ctx, "k", []byte("v2"), time.Minute)
	got, _ = c.TryGet(ctx, "k")
	assert.Equal(t, []byte("v2"), got)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	c.TrySet(ctx, "k", []byte("v"), 7*24*time.Hour)

	_, ok := c.TryGet(ctx, "k")
	assert.True(t, ok)

	// an entry past its TTL reads as absent even though still present
	now = now.Add(7*24*time.Hour + time.Second)
	_, ok = c.TryGet(ctx, "k")
	assert.False(t, ok)
}
