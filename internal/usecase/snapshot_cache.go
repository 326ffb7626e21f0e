package usecase

import (
	"context"
	"sync"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"golang.org/x/sync/singleflight"
)

type snapshotResult struct {
	snapshot *domain.MarketSnapshot
	err      error
}

// SnapshotCache memoizes market lookups for one batch. Concurrent callers
// share the in-flight request and failures are kept, so a market is fetched
// at most once per batch.
type SnapshotCache struct {
	markets domain.MarketDataClient
	group   singleflight.Group

	mu      sync.Mutex
	results map[string]snapshotResult
}

func NewSnapshotCache(markets domain.MarketDataClient) *SnapshotCache {
	return &SnapshotCache{markets: markets, results: make(map[string]snapshotResult)}
}

func (c *SnapshotCache) Fetch(ctx context.Context, marketID string) (*domain.MarketSnapshot, error) {
	if result, ok := c.lookup(marketID); ok {
		return result.snapshot, result.err
	}

	value, _, _ := c.group.Do(marketID, func() (any, error) {
		if result, ok := c.lookup(marketID); ok {
			return result, nil
		}
		snapshot, err := c.markets.GetMarketData(ctx, marketID)
		if err == nil && snapshot == nil {
			err = domain.ErrMalformedMarket
		}
		result := snapshotResult{snapshot: snapshot, err: err}
		c.mu.Lock()
		c.results[marketID] = result
		c.mu.Unlock()
		return result, nil
	})
	result := value.(snapshotResult)
	return result.snapshot, result.err
}

func (c *SnapshotCache) lookup(marketID string) (snapshotResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.results[marketID]
	return result, ok
}
