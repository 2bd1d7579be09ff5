// internal/adapter/storage/cached_corpus.go

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

// CachedCorpus layers the corpus cache over a live corpus provider. A
// non-fresh fetch serves from cache when a young enough entry exists; a fresh
// fetch always goes to the source. Live results are written back best-effort;
// a cache write failure never fails the fetch.
type CachedCorpus struct {
	source trend.CorpusProvider
	store  *CorpusStore
	maxAge time.Duration
	logger *zap.Logger
}

// NewCachedCorpus creates a caching corpus provider.
func NewCachedCorpus(source trend.CorpusProvider, store *CorpusStore, maxAge time.Duration, logger *zap.Logger) *CachedCorpus {
	return &CachedCorpus{
		source: source,
		store:  store,
		maxAge: maxAge,
		logger: logger,
	}
}

// FetchCorpus implements trend.CorpusProvider.
func (c *CachedCorpus) FetchCorpus(ctx context.Context, communities []string, limit int, fresh bool) ([]trend.Item, error) {
	key := cacheKey(communities, limit)

	if !fresh {
		items, hit, err := c.store.Load(ctx, key, c.maxAge)
		if err != nil {
			c.logger.Warn("corpus cache read failed", zap.Error(err))
		} else if hit {
			c.logger.Debug("corpus cache hit",
				zap.String("key", key),
				zap.Int("items", len(items)))
			return items, nil
		}
	}

	items, err := c.source.FetchCorpus(ctx, communities, limit, fresh)
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, key, items); err != nil {
		c.logger.Warn("corpus cache write failed", zap.Error(err))
	}
	return items, nil
}

func cacheKey(communities []string, limit int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.Join(communities, ",")), limit)
}
