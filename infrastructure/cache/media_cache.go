package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const mediaURLTTL = 10 * time.Minute

// MediaCache is a read-through cache for resolved media URLs. Media rows are
// immutable once generated, so a short TTL is purely about memory pressure.
// All methods are safe on a nil Redis client.
type MediaCache struct {
	client *redis.Client
}

func NewMediaCache(client *redis.Client) *MediaCache {
	return &MediaCache{client: client}
}

func (c *MediaCache) key(id, userID int64) string {
	return fmt.Sprintf("media:url:%d:%d", userID, id)
}

// GetURL returns the cached URL, or "" on miss or when the cache is disabled.
func (c *MediaCache) GetURL(ctx context.Context, id, userID int64) string {
	if c == nil || c.client == nil {
		return ""
	}
	val, err := c.client.Get(ctx, c.key(id, userID)).Result()
	if err != nil {
		return ""
	}
	return val
}

func (c *MediaCache) SetURL(ctx context.Context, id, userID int64, url string) {
	if c == nil || c.client == nil || url == "" {
		return
	}
	_ = c.client.Set(ctx, c.key(id, userID), url, mediaURLTTL).Err()
}
