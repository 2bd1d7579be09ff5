// internal/service/enrich/orchestrator.go

package enrich

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

// Config contains configuration for the enrichment orchestrator.
type Config struct {
	// PerItemTimeout bounds each snippet fetch independently.
	PerItemTimeout time.Duration

	// MaxConcurrent caps in-flight snippet fetches. Zero or negative means
	// one goroutine per item.
	MaxConcurrent int

	// MaxSnippets truncates each item's snippet list.
	MaxSnippets int
}

// Orchestrator attaches conversation snippets to ranked items. All fetches run
// concurrently, each bounded by its own timeout; a failure on one item never
// aborts or delays the others.
type Orchestrator struct {
	snippets trend.SnippetProvider
	config   Config
	logger   *zap.Logger
}

// NewOrchestrator creates a new enrichment orchestrator.
func NewOrchestrator(snippets trend.SnippetProvider, config Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		snippets: snippets,
		config:   config,
		logger:   logger,
	}
}

// Enrich fans out one snippet fetch per item and waits for all of them to
// reach a terminal state. Results land in a slot keyed by the item's rank
// index, so output order always matches input order regardless of completion
// order. A timed-out or failed fetch yields its item with empty snippets and
// EnrichmentFailed set, keeping its rank position.
func (o *Orchestrator) Enrich(ctx context.Context, items []trend.ScoredItem) []trend.EnrichedItem {
	results := make([]trend.EnrichedItem, len(items))

	var sem chan struct{}
	if o.config.MaxConcurrent > 0 {
		sem = make(chan struct{}, o.config.MaxConcurrent)
	}

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(slot int, item trend.ScoredItem) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			results[slot] = o.enrichOne(ctx, item)
		}(i, items[i])
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) enrichOne(ctx context.Context, item trend.ScoredItem) trend.EnrichedItem {
	callCtx, cancel := context.WithTimeout(ctx, o.config.PerItemTimeout)
	defer cancel()

	snippets, err := o.snippets.FetchSnippets(callCtx, item.Item.Topic(), o.config.MaxSnippets)
	if err != nil {
		o.logger.Warn("snippet fetch failed",
			zap.String("topic", item.Item.Topic()),
			zap.Error(err))
		return trend.EnrichedItem{ScoredItem: item, Snippets: []trend.Snippet{}, EnrichmentFailed: true}
	}

	if len(snippets) > o.config.MaxSnippets {
		snippets = snippets[:o.config.MaxSnippets]
	}
	if snippets == nil {
		snippets = []trend.Snippet{}
	}
	return trend.EnrichedItem{ScoredItem: item, Snippets: snippets}
}
