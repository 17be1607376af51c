package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorCache_NilIsAlwaysMiss(t *testing.T) {
	var cache *AuthorCache
	ctx := context.Background()

	cache.Set(ctx, 1, ScopeAll, []uint{1, 2})
	_, ok := cache.Get(ctx, 1, ScopeAll)
	assert.False(t, ok)
	cache.Invalidate(ctx, 1)

	assert.Nil(t, NewAuthorCache(nil, time.Minute))
}

func TestAuthorCache_RoundTripAndTTL(t *testing.T) {
	rdb, mr := newTestRedis(t)
	cache := NewAuthorCache(rdb, 30*time.Second)
	ctx := context.Background()

	cache.Set(ctx, 7, ScopeFollowing, []uint{3, 5})
	ids, ok := cache.Get(ctx, 7, ScopeFollowing)
	require.True(t, ok)
	assert.Equal(t, []uint{3, 5}, ids)

	// an empty set is still a hit
	cache.Set(ctx, 8, ScopeCircles, nil)
	ids, ok = cache.Get(ctx, 8, ScopeCircles)
	require.True(t, ok)
	assert.Empty(t, ids)

	mr.FastForward(31 * time.Second)
	_, ok = cache.Get(ctx, 7, ScopeFollowing)
	assert.False(t, ok)
}

func TestAuthorCache_InvalidateAllScopes(t *testing.T) {
	rdb, mr := newTestRedis(t)
	cache := NewAuthorCache(rdb, time.Minute)
	ctx := context.Background()

	for _, scope := range feedScopes {
		cache.Set(ctx, 1, scope, []uint{1})
		cache.Set(ctx, 2, scope, []uint{2})
	}
	cache.Invalidate(ctx, 1)

	for _, scope := range feedScopes {
		assert.False(t, mr.Exists(authorCacheKey(1, scope)))
		assert.True(t, mr.Exists(authorCacheKey(2, scope)))
	}
}
