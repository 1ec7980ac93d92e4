package cache_test

import (
	"context"
	"testing"

	"postpilot/infrastructure/cache"

	"github.com/stretchr/testify/assert"
)

// TestNewMediaCacheNilClient ensures the cache degrades gracefully without Redis.
func TestNewMediaCacheNilClient(t *testing.T) {
	mediaCache := cache.NewMediaCache(nil)
	assert.NotNil(t, mediaCache)

	assert.Equal(t, "", mediaCache.GetURL(context.Background(), 1, 2))
	mediaCache.SetURL(context.Background(), 1, 2, "https://cdn.example.com/a.jpg")
}
