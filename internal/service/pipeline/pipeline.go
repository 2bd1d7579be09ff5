// internal/service/pipeline/pipeline.go

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"mtc/internal/domain/niche"
	"mtc/internal/domain/trend"
	"mtc/internal/service/enrich"
	"mtc/internal/service/ranking"
)

// ErrEmptyCorpus is returned when both the cached and the escalated fresh
// fetch come back with zero items.
var ErrEmptyCorpus = errors.New("no trend data available")

// Config contains configuration for a ranking pass.
type Config struct {
	// CorpusLimit is the per-community item count requested from the
	// corpus provider.
	CorpusLimit int

	// ViabilityThreshold is the minimum corpus size below which the
	// controller escalates to exactly one fresh (cache-bypassing) fetch.
	ViabilityThreshold int

	// EnrichLimit is how many ranked items enter enrichment.
	EnrichLimit int

	// FinalLimit is the output size; must not exceed EnrichLimit.
	FinalLimit int

	// Source names the corpus feed in responses and events.
	Source string

	// EventsSubject, when non-empty, is the NATS subject ranked results
	// are published on.
	EventsSubject string
}

// Result is the structured response of one ranking pass.
type Result struct {
	RunID         string               `json:"run_id"`
	Niche         niche.Profile        `json:"niche"`
	Trends        []trend.EnrichedItem `json:"trends"`
	TotalAnalyzed int                  `json:"total_analyzed"`
	MatchedCount  int                  `json:"matched_count"`
	Source        string               `json:"source"`
}

// Pipeline runs the full relevance pass: profile extraction, corpus fetch with
// escalation, scoring, ranking, and enrichment.
type Pipeline struct {
	profiles niche.Provider
	corpus   trend.CorpusProvider
	scorer   *ranking.Scorer
	enricher *enrich.Orchestrator
	events   *nats.Conn
	config   Config
	logger   *zap.Logger
}

// New creates a pipeline. events may be nil, in which case no result events
// are published.
func New(
	profiles niche.Provider,
	corpus trend.CorpusProvider,
	scorer *ranking.Scorer,
	enricher *enrich.Orchestrator,
	events *nats.Conn,
	config Config,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		profiles: profiles,
		corpus:   corpus,
		scorer:   scorer,
		enricher: enricher,
		events:   events,
		config:   config,
		logger:   logger,
	}
}

// Match extracts a niche profile for keywords and runs a ranking pass against
// it. A profile-provider failure is recovered locally with the degraded
// profile and never surfaces as an error.
func (p *Pipeline) Match(ctx context.Context, keywords []string) (*Result, error) {
	profile, err := p.profiles.AnalyzeNiche(ctx, keywords)
	if err != nil {
		p.logger.Warn("niche analysis failed, using degraded profile",
			zap.Strings("keywords", keywords),
			zap.Error(err))
		profile = niche.Degraded(keywords)
	}
	return p.MatchProfile(ctx, profile)
}

// MatchProfile runs a ranking pass against an already-built profile.
func (p *Pipeline) MatchProfile(ctx context.Context, profile niche.Profile) (*Result, error) {
	items, err := p.fetchCorpus(ctx, profile)
	if err != nil {
		return nil, err
	}

	scored := make([]trend.ScoredItem, 0, len(items))
	matched := 0
	for _, item := range items {
		relevance := p.scorer.Score(item, profile)
		if relevance == ranking.ScoreExcluded {
			continue
		}
		if relevance > 0 {
			matched++
		}
		scored = append(scored, trend.ScoredItem{Item: item, Relevance: relevance})
	}

	ranked := ranking.Rank(scored, p.config.EnrichLimit)
	enriched := p.enricher.Enrich(ctx, ranked)
	if len(enriched) > p.config.FinalLimit {
		enriched = enriched[:p.config.FinalLimit]
	}

	result := &Result{
		RunID:         uuid.New().String(),
		Niche:         profile,
		Trends:        enriched,
		TotalAnalyzed: len(items),
		MatchedCount:  matched,
		Source:        p.config.Source,
	}

	p.logger.Info("ranking pass complete",
		zap.String("run_id", result.RunID),
		zap.Int("total_analyzed", result.TotalAnalyzed),
		zap.Int("matched", result.MatchedCount),
		zap.Int("returned", len(result.Trends)))

	p.publishResult(result)
	return result, nil
}

// fetchCorpus is the escalation controller. The first attempt always takes
// the cached path; a corpus below the viability threshold triggers exactly one
// fresh retry. Transport errors propagate immediately on either attempt. This
// is a freshness policy, not a retry mechanism.
func (p *Pipeline) fetchCorpus(ctx context.Context, profile niche.Profile) ([]trend.Item, error) {
	communities := profile.Subreddits
	if len(communities) == 0 {
		communities = niche.DefaultSubreddits
	}

	items, err := p.corpus.FetchCorpus(ctx, communities, p.config.CorpusLimit, false)
	if err != nil {
		return nil, fmt.Errorf("corpus fetch: %w", err)
	}
	if len(items) >= p.config.ViabilityThreshold {
		return items, nil
	}

	p.logger.Info("corpus below viability threshold, escalating to fresh fetch",
		zap.Int("got", len(items)),
		zap.Int("threshold", p.config.ViabilityThreshold))

	fresh, err := p.corpus.FetchCorpus(ctx, communities, p.config.CorpusLimit, true)
	if err != nil {
		return nil, fmt.Errorf("fresh corpus fetch: %w", err)
	}
	if len(fresh) > len(items) {
		items = fresh
	}
	if len(items) == 0 {
		return nil, ErrEmptyCorpus
	}
	return items, nil
}

// resultEvent is the payload published after each completed pass.
type resultEvent struct {
	RunID         string    `json:"run_id"`
	Description   string    `json:"description"`
	TotalAnalyzed int       `json:"total_analyzed"`
	MatchedCount  int       `json:"matched_count"`
	Returned      int       `json:"returned"`
	Source        string    `json:"source"`
	CompletedAt   time.Time `json:"completed_at"`
}

func (p *Pipeline) publishResult(result *Result) {
	if p.events == nil || p.config.EventsSubject == "" {
		return
	}

	data, err := json.Marshal(resultEvent{
		RunID:         result.RunID,
		Description:   result.Niche.Description,
		TotalAnalyzed: result.TotalAnalyzed,
		MatchedCount:  result.MatchedCount,
		Returned:      len(result.Trends),
		Source:        result.Source,
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("failed to marshal result event", zap.Error(err))
		return
	}

	if err := p.events.Publish(p.config.EventsSubject, data); err != nil {
		p.logger.Warn("failed to publish result event", zap.Error(err))
	}
}
