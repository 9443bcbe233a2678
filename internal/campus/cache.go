package campus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheVersionKey = "campus:reports:ver"

// ReportCache memoizes report results in redis under a shared version
// counter. Any write bumps the counter, which orphans every cached report
// at once; orphans age out via TTL. The cache is best-effort only: every
// failure falls through to the database.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache creates a cache with the given entry TTL.
func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ReportCache{rdb: rdb, ttl: ttl}
}

// Get loads a cached report into dst, reporting whether it was found.
func (c *ReportCache) Get(ctx context.Context, name string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, c.key(ctx, name)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Debug("report cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logrus.WithError(err).Debug("report cache decode failed")
		return false
	}
	return true
}

// Set stores a report result under the current cache version.
func (c *ReportCache) Set(ctx context.Context, name string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(ctx, name), raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).Debug("report cache write failed")
	}
}

// Invalidate bumps the version counter, orphaning all cached reports.
func (c *ReportCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, cacheVersionKey).Err(); err != nil {
		logrus.WithError(err).Debug("report cache invalidate failed")
	}
}

func (c *ReportCache) key(ctx context.Context, name string) string {
	ver, err := c.rdb.Get(ctx, cacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		logrus.WithError(err).Debug("report cache version read failed")
	}
	return fmt.Sprintf("campus:reports:%d:%s", ver, name)
}
