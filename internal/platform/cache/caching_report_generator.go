// Package cache provides caching implementations for report generation.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportGenerator is the interface the cache decorates. The validation
// usecase's ReportUsecase satisfies it.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context) (string, error)
}

// CachingReportGenerator decorates a ReportGenerator with Redis caching.
// データ品質レポートは全銘柄の検証を走らせるため高コストで、
// 次の取引日の朝までは結果が変わらない前提でキャッシュします。
type CachingReportGenerator struct {
	inner ReportGenerator
	rdb   *redis.Client
	ttl   time.Duration
	key   string
}

// NewCachingReportGenerator decorates a ReportGenerator with Redis caching.
// If ttl is 0, it defaults to the time until the next market open.
// If key is empty, it uses "report:daily".
func NewCachingReportGenerator(rdb *redis.Client, ttl time.Duration, inner ReportGenerator, key string) *CachingReportGenerator {
	if ttl <= 0 {
		ttl = TimeUntilNextMarketOpen()
	}
	if key == "" {
		key = "report:daily"
	}
	return &CachingReportGenerator{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		key:   key,
	}
}

// GenerateDailyReport returns the report, checking cache first then falling
// back to the underlying generator.
func (c *CachingReportGenerator) GenerateDailyReport(ctx context.Context) (string, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.GenerateDailyReport(ctx)
	}

	// 1) Check cache
	if s, err := c.rdb.Get(ctx, c.key).Result(); err == nil && s != "" {
		return s, nil
	}

	// 2) Fallback to the generator
	out, err := c.inner.GenerateDailyReport(ctx)
	if err != nil {
		return "", err
	}

	// 3) Store in cache (best effort)
	_ = c.rdb.Set(ctx, c.key, out, c.ttl).Err()

	return out, nil
}

// Invalidate drops the cached report. Called after a collection run so the
// next report reflects the new data.
func (c *CachingReportGenerator) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key).Err()
}
