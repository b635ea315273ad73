//go:build integration

// Package redis exercises the portfolio cache against a real Redis
// instance: TTL expiry and the miss-as-nil contract.
package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landshare/internal/portfolio"
	platformredis "landshare/internal/platform/redis"
	"landshare/pkg/domain"
	"landshare/pkg/testutil/containers"
)

var holder = domain.Address("0x00000000000000000000000000000000000000aa")

func newCache(t *testing.T, ttl time.Duration) *portfolio.Cache {
	t.Helper()
	rc := containers.NewRedisContainer(t)
	client, err := platformredis.New(context.Background(), rc.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return portfolio.NewCache(client, ttl)
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t, time.Minute)

	t.Run("miss returns nil without error", func(t *testing.T) {
		got, err := cache.Get(ctx, holder)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	view := &portfolio.View{
		Address: holder,
		Holdings: []portfolio.Holding{
			{PropertyID: domain.NewPropertyID(), Balance: 500, TotalSupply: 1_000, Claimable: 42},
		},
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.Put(ctx, view))

	t.Run("hit returns the stored view", func(t *testing.T) {
		got, err := cache.Get(ctx, holder)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, view.Address, got.Address)
		assert.Equal(t, view.Holdings, got.Holdings)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		require.NoError(t, cache.Invalidate(ctx, holder))
		got, err := cache.Get(ctx, holder)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := newCache(t, time.Second)

	require.NoError(t, cache.Put(ctx, &portfolio.View{Address: holder}))

	assert.Eventually(t, func() bool {
		got, err := cache.Get(ctx, holder)
		return err == nil && got == nil
	}, 5*time.Second, 200*time.Millisecond)
}
