package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	"github.com/sitedesk/inspection-backend/internal/site/biz"
	"go.uber.org/zap"
)

// siteCacheTTL bounds staleness after out-of-band edits
const siteCacheTTL = 5 * time.Minute

// SiteCache implements biz.SiteCache on Redis
type SiteCache struct {
	client *redis.Client
	logger *logger.Logger
}

// NewSiteCache creates a Redis-backed site cache
func NewSiteCache(client *redis.Client, log *logger.Logger) *SiteCache {
	return &SiteCache{
		client: client,
		logger: log,
	}
}

func siteCacheKey(id int64) string {
	return fmt.Sprintf("site:%d", id)
}

// Get returns the cached site, if present
func (c *SiteCache) Get(ctx context.Context, id int64) (*biz.Site, bool) {
	data, err := c.client.Get(ctx, siteCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("site cache read failed", zap.Int64("site_id", id), zap.Error(err))
		}
		return nil, false
	}

	var site biz.Site
	if err := json.Unmarshal(data, &site); err != nil {
		c.logger.Warn("site cache entry is corrupt, dropping it", zap.Int64("site_id", id), zap.Error(err))
		c.client.Del(ctx, siteCacheKey(id))
		return nil, false
	}

	return &site, true
}

// Set stores a site in the cache; failures are logged, never surfaced
func (c *SiteCache) Set(ctx context.Context, site *biz.Site) {
	data, err := json.Marshal(site)
	if err != nil {
		c.logger.Warn("failed to marshal site for cache", zap.Int64("site_id", site.ID), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, siteCacheKey(site.ID), data, siteCacheTTL).Err(); err != nil {
		c.logger.Warn("site cache write failed", zap.Int64("site_id", site.ID), zap.Error(err))
	}
}

// Invalidate drops a site from the cache
func (c *SiteCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, siteCacheKey(id)).Err(); err != nil {
		c.logger.Warn("site cache invalidation failed", zap.Int64("site_id", id), zap.Error(err))
	}
}
