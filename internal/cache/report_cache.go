package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "analytics:report"

// ReportCache holds the last analytics report per pharmacist
type ReportCache interface {
	GetReport(ctx context.Context, pharmacistID string) (*domain.AnalyticsReport, bool, error)
	SetReport(ctx context.Context, pharmacistID string, report *domain.AnalyticsReport) error
	Invalidate(ctx context.Context, pharmacistID string) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(client *redis.Client, cfg config.CacheConfig) ReportCache {
	if client == nil || !cfg.Enabled {
		return &noopReportCache{}
	}
	return &redisReportCache{client: client, ttl: ttlFromConfig(cfg)}
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, pharmacistID string) (*domain.AnalyticsReport, bool, error) {
	var report domain.AnalyticsReport
	ok, err := getJSON(ctx, c.client, reportKey(pharmacistID), &report)
	if err != nil || !ok {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, pharmacistID string, report *domain.AnalyticsReport) error {
	return setJSON(ctx, c.client, reportKey(pharmacistID), report, c.ttl)
}

func (c *redisReportCache) Invalidate(ctx context.Context, pharmacistID string) error {
	if err := c.client.Del(ctx, reportKey(pharmacistID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, scanBatchSize)
}

func (n *noopReportCache) GetReport(ctx context.Context, pharmacistID string) (*domain.AnalyticsReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, pharmacistID string, report *domain.AnalyticsReport) error {
	return nil
}

func (n *noopReportCache) Invalidate(ctx context.Context, pharmacistID string) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func reportKey(pharmacistID string) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, pharmacistID)
}
