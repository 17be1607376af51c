package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"accountability/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AuthorCache keeps each viewer's resolved author set per feed scope in Redis.
// A nil *AuthorCache (or nil client) is a valid, always-missing cache.
type AuthorCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAuthorCache(rdb *redis.Client, ttl time.Duration) *AuthorCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &AuthorCache{rdb: rdb, ttl: ttl}
}

func authorCacheKey(viewerID uint, scope FeedScope) string {
	return fmt.Sprintf("feed:authors:%d:%s", viewerID, scope)
}

func (c *AuthorCache) Get(ctx context.Context, viewerID uint, scope FeedScope) ([]uint, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, authorCacheKey(viewerID, scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.Logger().Warn("author cache read failed", zap.Uint("viewer", viewerID), zap.Error(err))
		}
		return nil, false
	}
	var ids []uint
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *AuthorCache) Set(ctx context.Context, viewerID uint, scope FeedScope, ids []uint) {
	if c == nil {
		return
	}
	if ids == nil {
		ids = []uint{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, authorCacheKey(viewerID, scope), payload, c.ttl).Err(); err != nil {
		utils.Logger().Warn("author cache write failed", zap.Uint("viewer", viewerID), zap.Error(err))
	}
}

// Invalidate drops every scope for the given viewers.
func (c *AuthorCache) Invalidate(ctx context.Context, viewerIDs ...uint) {
	if c == nil || len(viewerIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(viewerIDs)*len(feedScopes))
	for _, id := range viewerIDs {
		for _, scope := range feedScopes {
			keys = append(keys, authorCacheKey(id, scope))
		}
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		utils.Logger().Warn("author cache invalidation failed", zap.Uints("viewers", viewerIDs), zap.Error(err))
	}
}
