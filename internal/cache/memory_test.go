package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Total int `json:"total"`
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var out payload
	found, err := c.GetJSON(ctx, StatsUserKey("u1"), &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, StatsUserKey("u1"), payload{Total: 3}, time.Minute))

	found, err = c.GetJSON(ctx, StatsUserKey("u1"), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, out.Total)

	require.NoError(t, c.Delete(ctx, StatsUserKey("u1")))
	found, _ = c.GetJSON(ctx, StatsUserKey("u1"), &out)
	assert.False(t, found)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetJSON(ctx, "k", payload{Total: 1}, time.Second))

	now = now.Add(2 * time.Second)
	var out payload
	found, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_IncrWindow(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		n, err := c.Incr(ctx, RateKey("email", "u1"), time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	now = now.Add(time.Minute + time.Second)
	n, err := c.Incr(ctx, RateKey("email", "u1"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "stats:user:abc", StatsUserKey("abc"))
	assert.Equal(t, "news:external:all", NewsExternalKey(""))
	assert.Equal(t, "news:external:market", NewsExternalKey("market"))
}
