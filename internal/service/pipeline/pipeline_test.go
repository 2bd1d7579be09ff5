package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mtc/internal/domain/niche"
	"mtc/internal/domain/trend"
	"mtc/internal/service/enrich"
	"mtc/internal/service/ranking"
)

// fakeCorpus serves a cached batch on the first call and a fresh batch when
// asked for one, recording every request it sees.
type fakeCorpus struct {
	cached    []trend.Item
	fresh     []trend.Item
	cachedErr error
	freshErr  error
	requests  []bool // fresh flag per call
}

func (f *fakeCorpus) FetchCorpus(ctx context.Context, communities []string, limit int, fresh bool) ([]trend.Item, error) {
	f.requests = append(f.requests, fresh)
	if fresh {
		return f.fresh, f.freshErr
	}
	return f.cached, f.cachedErr
}

type fakeProfiles struct {
	profile niche.Profile
	err     error
	got     []string
}

func (f *fakeProfiles) AnalyzeNiche(ctx context.Context, keywords []string) (niche.Profile, error) {
	f.got = keywords
	return f.profile, f.err
}

type stubSnippets struct{}

func (stubSnippets) FetchSnippets(ctx context.Context, topic string, max int) ([]trend.Snippet, error) {
	return []trend.Snippet{{ID: "s-" + topic, Text: "about " + topic}}, nil
}

func corpusOf(n int, prefix string) []trend.Item {
	items := make([]trend.Item, n)
	for i := range items {
		items[i] = trend.NewSearchItem(trend.SearchTrend{
			Query:        fmt.Sprintf("%s topic %d about startup life", prefix, i),
			SearchVolume: float64(i),
		})
	}
	return items
}

func newTestPipeline(profiles niche.Provider, corpus trend.CorpusProvider, cfg Config) *Pipeline {
	logger := zap.NewNop()
	scorer := ranking.NewScorer(ranking.DefaultWeights(), ranking.GateLenient)
	enricher := enrich.NewOrchestrator(stubSnippets{}, enrich.Config{
		PerItemTimeout: time.Second,
		MaxSnippets:    3,
	}, logger)
	return New(profiles, corpus, scorer, enricher, nil, cfg, logger)
}

func baseConfig() Config {
	return Config{
		CorpusLimit:        25,
		ViabilityThreshold: 100,
		EnrichLimit:        15,
		FinalLimit:         10,
		Source:             "reddit",
	}
}

func TestPipeline_EscalatesBelowThreshold(t *testing.T) {
	corpus := &fakeCorpus{
		cached: corpusOf(40, "cached"),
		fresh:  corpusOf(381, "fresh"),
	}
	profiles := &fakeProfiles{profile: niche.Profile{Keywords: []string{"startup"}}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	result, err := p.Match(context.Background(), []string{"startup"})
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true}, corpus.requests)
	assert.Equal(t, 381, result.TotalAnalyzed)
	assert.Equal(t, 381, result.MatchedCount)
	assert.Len(t, result.Trends, 10)
}

func TestPipeline_NoEscalationAtThreshold(t *testing.T) {
	corpus := &fakeCorpus{cached: corpusOf(100, "cached")}
	profiles := &fakeProfiles{profile: niche.Profile{Keywords: []string{"startup"}}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	result, err := p.Match(context.Background(), []string{"startup"})
	require.NoError(t, err)

	assert.Equal(t, []bool{false}, corpus.requests)
	assert.Equal(t, 100, result.TotalAnalyzed)
}

func TestPipeline_FreshSmallerThanCachedKeepsCached(t *testing.T) {
	corpus := &fakeCorpus{
		cached: corpusOf(40, "cached"),
		fresh:  corpusOf(12, "fresh"),
	}
	profiles := &fakeProfiles{profile: niche.Profile{Keywords: []string{"startup"}}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	result, err := p.Match(context.Background(), []string{"startup"})
	require.NoError(t, err)
	assert.Equal(t, 40, result.TotalAnalyzed)
}

func TestPipeline_BothAttemptsEmpty(t *testing.T) {
	corpus := &fakeCorpus{}
	profiles := &fakeProfiles{profile: niche.Profile{Keywords: []string{"startup"}}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	_, err := p.Match(context.Background(), []string{"startup"})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Equal(t, []bool{false, true}, corpus.requests)
}

func TestPipeline_TransportErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("cached attempt", func(t *testing.T) {
		corpus := &fakeCorpus{cachedErr: boom}
		p := newTestPipeline(&fakeProfiles{}, corpus, baseConfig())

		_, err := p.Match(context.Background(), []string{"startup"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []bool{false}, corpus.requests)
	})

	t.Run("fresh attempt", func(t *testing.T) {
		corpus := &fakeCorpus{cached: corpusOf(3, "cached"), freshErr: boom}
		p := newTestPipeline(&fakeProfiles{}, corpus, baseConfig())

		_, err := p.Match(context.Background(), []string{"startup"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestPipeline_DegradedProfileOnProviderFailure(t *testing.T) {
	corpus := &fakeCorpus{cached: corpusOf(150, "cached")}
	profiles := &fakeProfiles{err: errors.New("model unavailable")}
	p := newTestPipeline(profiles, corpus, baseConfig())

	result, err := p.Match(context.Background(), []string{"startup", "saas"})
	require.NoError(t, err)

	assert.Equal(t, []string{"startup", "saas"}, result.Niche.Keywords)
	assert.Equal(t, niche.DefaultSubreddits, result.Niche.Subreddits)
	assert.Equal(t, 150, result.TotalAnalyzed)
}

func TestPipeline_ExcludedItemsNeverSurface(t *testing.T) {
	corpus := &fakeCorpus{cached: append(
		corpusOf(120, "cached"),
		trend.NewSearchItem(trend.SearchTrend{Query: "startup crypto scam exposed", SearchVolume: 1_000_000}),
	)}
	profiles := &fakeProfiles{profile: niche.Profile{
		Keywords:     []string{"startup"},
		ExcludeTerms: []string{"crypto"},
	}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	result, err := p.Match(context.Background(), []string{"startup"})
	require.NoError(t, err)

	assert.Equal(t, 121, result.TotalAnalyzed)
	assert.Equal(t, 120, result.MatchedCount)
	for _, tr := range result.Trends {
		assert.NotContains(t, tr.Item.Topic(), "crypto")
	}
}

func TestPipeline_TrendsOrderedAndEnriched(t *testing.T) {
	corpus := &fakeCorpus{cached: corpusOf(150, "cached")}
	profiles := &fakeProfiles{profile: niche.Profile{Keywords: []string{"startup"}}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	result, err := p.Match(context.Background(), []string{"startup"})
	require.NoError(t, err)

	require.Len(t, result.Trends, 10)
	for i := 1; i < len(result.Trends); i++ {
		assert.GreaterOrEqual(t, result.Trends[i-1].Relevance, result.Trends[i].Relevance)
	}
	for _, tr := range result.Trends {
		assert.False(t, tr.EnrichmentFailed)
		require.Len(t, tr.Snippets, 1)
		assert.Equal(t, "s-"+tr.Item.Topic(), tr.Snippets[0].ID)
	}
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "reddit", result.Source)
}

func TestPipeline_DefaultCommunitiesWhenProfileHasNone(t *testing.T) {
	var gotCommunities []string
	corpus := &communityRecorder{inner: &fakeCorpus{cached: corpusOf(150, "cached")}, got: &gotCommunities}
	profiles := &fakeProfiles{profile: niche.Profile{Keywords: []string{"startup"}}}
	p := newTestPipeline(profiles, corpus, baseConfig())

	_, err := p.Match(context.Background(), []string{"startup"})
	require.NoError(t, err)
	assert.Equal(t, niche.DefaultSubreddits, gotCommunities)
}

type communityRecorder struct {
	inner trend.CorpusProvider
	got   *[]string
}

func (c *communityRecorder) FetchCorpus(ctx context.Context, communities []string, limit int, fresh bool) ([]trend.Item, error) {
	*c.got = communities
	return c.inner.FetchCorpus(ctx, communities, limit, fresh)
}
