package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "inventory:search"

// SearchCache memoises customer medicine searches by query and postal code
type SearchCache interface {
	GetResults(ctx context.Context, query, postalCode string) ([]domain.SearchResult, bool, error)
	SetResults(ctx context.Context, query, postalCode string, results []domain.SearchResult) error
	InvalidateAll(ctx context.Context) error
}

type redisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSearchCache struct{}

func NewSearchCache(client *redis.Client, cfg config.CacheConfig) SearchCache {
	if client == nil || !cfg.Enabled {
		return &noopSearchCache{}
	}
	return &redisSearchCache{client: client, ttl: ttlFromConfig(cfg)}
}

func NewNoopSearchCache() SearchCache {
	return &noopSearchCache{}
}

func (c *redisSearchCache) GetResults(ctx context.Context, query, postalCode string) ([]domain.SearchResult, bool, error) {
	var results []domain.SearchResult
	ok, err := getJSON(ctx, c.client, searchKey(query, postalCode), &results)
	if err != nil || !ok {
		return nil, false, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, true, nil
}

func (c *redisSearchCache) SetResults(ctx context.Context, query, postalCode string, results []domain.SearchResult) error {
	return setJSON(ctx, c.client, searchKey(query, postalCode), results, c.ttl)
}

func (c *redisSearchCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, searchKeyPrefix, scanBatchSize)
}

func (n *noopSearchCache) GetResults(ctx context.Context, query, postalCode string) ([]domain.SearchResult, bool, error) {
	return nil, false, nil
}

func (n *noopSearchCache) SetResults(ctx context.Context, query, postalCode string, results []domain.SearchResult) error {
	return nil
}

func (n *noopSearchCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func searchKey(query, postalCode string) string {
	raw := strings.ToLower(strings.TrimSpace(query)) + "|" + strings.TrimSpace(postalCode)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", searchKeyPrefix, hex.EncodeToString(hash[:]))
}
