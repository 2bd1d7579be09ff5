package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

// fakeSnippetProvider returns canned snippets per topic, with optional
// per-topic errors and delays.
type fakeSnippetProvider struct {
	mu       sync.Mutex
	snippets map[string][]trend.Snippet
	errs     map[string]error
	delays   map[string]time.Duration
	calls    []string
}

func (f *fakeSnippetProvider) FetchSnippets(ctx context.Context, topic string, max int) ([]trend.Snippet, error) {
	f.mu.Lock()
	f.calls = append(f.calls, topic)
	delay := f.delays[topic]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[topic]; err != nil {
		return nil, err
	}
	return f.snippets[topic], nil
}

func rankedItems(topicList ...string) []trend.ScoredItem {
	items := make([]trend.ScoredItem, len(topicList))
	for i, topic := range topicList {
		items[i] = trend.ScoredItem{
			Item:      trend.NewSearchItem(trend.SearchTrend{Query: topic}),
			Relevance: float64(100 - i),
		}
	}
	return items
}

func newTestOrchestrator(provider trend.SnippetProvider, cfg Config) *Orchestrator {
	return NewOrchestrator(provider, cfg, zap.NewNop())
}

func TestOrchestrator_FailureIsolation(t *testing.T) {
	provider := &fakeSnippetProvider{
		snippets: map[string][]trend.Snippet{
			"alpha": {{ID: "1", Text: "on alpha"}},
			"gamma": {{ID: "2", Text: "on gamma"}},
		},
		errs: map[string]error{"beta": errors.New("rate limited")},
	}
	o := newTestOrchestrator(provider, Config{PerItemTimeout: time.Second, MaxSnippets: 5})

	out := o.Enrich(context.Background(), rankedItems("alpha", "beta", "gamma"))
	require.Len(t, out, 3)

	assert.False(t, out[0].EnrichmentFailed)
	assert.Len(t, out[0].Snippets, 1)

	assert.True(t, out[1].EnrichmentFailed)
	assert.NotNil(t, out[1].Snippets)
	assert.Empty(t, out[1].Snippets)

	assert.False(t, out[2].EnrichmentFailed)
	assert.Len(t, out[2].Snippets, 1)
}

func TestOrchestrator_OrderMatchesInputNotCompletion(t *testing.T) {
	provider := &fakeSnippetProvider{
		snippets: map[string][]trend.Snippet{
			"slow":   {{ID: "s", Text: "slow result"}},
			"fast":   {{ID: "f", Text: "fast result"}},
			"medium": {{ID: "m", Text: "medium result"}},
		},
		delays: map[string]time.Duration{
			"slow":   80 * time.Millisecond,
			"medium": 40 * time.Millisecond,
		},
	}
	o := newTestOrchestrator(provider, Config{PerItemTimeout: time.Second, MaxSnippets: 5})

	out := o.Enrich(context.Background(), rankedItems("slow", "fast", "medium"))
	require.Len(t, out, 3)
	assert.Equal(t, "slow", out[0].Item.Topic())
	assert.Equal(t, "fast", out[1].Item.Topic())
	assert.Equal(t, "medium", out[2].Item.Topic())
	assert.Equal(t, "s", out[0].Snippets[0].ID)
}

func TestOrchestrator_PerItemTimeout(t *testing.T) {
	provider := &fakeSnippetProvider{
		snippets: map[string][]trend.Snippet{
			"quick": {{ID: "q", Text: "made it"}},
		},
		delays: map[string]time.Duration{"stuck": time.Second},
	}
	o := newTestOrchestrator(provider, Config{PerItemTimeout: 30 * time.Millisecond, MaxSnippets: 5})

	start := time.Now()
	out := o.Enrich(context.Background(), rankedItems("stuck", "quick"))
	elapsed := time.Since(start)

	require.Len(t, out, 2)
	assert.True(t, out[0].EnrichmentFailed)
	assert.False(t, out[1].EnrichmentFailed)

	// The timed-out fetch must not hold the batch for its full delay.
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestOrchestrator_TruncatesSnippets(t *testing.T) {
	provider := &fakeSnippetProvider{
		snippets: map[string][]trend.Snippet{
			"busy": {{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}},
		},
	}
	o := newTestOrchestrator(provider, Config{PerItemTimeout: time.Second, MaxSnippets: 2})

	out := o.Enrich(context.Background(), rankedItems("busy"))
	require.Len(t, out, 1)
	assert.Len(t, out[0].Snippets, 2)
	assert.Equal(t, "1", out[0].Snippets[0].ID)
}

func TestOrchestrator_NilSnippetsBecomeEmptySlice(t *testing.T) {
	provider := &fakeSnippetProvider{}
	o := newTestOrchestrator(provider, Config{PerItemTimeout: time.Second, MaxSnippets: 5})

	out := o.Enrich(context.Background(), rankedItems("nothing here"))
	require.Len(t, out, 1)
	assert.False(t, out[0].EnrichmentFailed)
	assert.NotNil(t, out[0].Snippets)
	assert.Empty(t, out[0].Snippets)
}

func TestOrchestrator_ConcurrencyCapStillCompletes(t *testing.T) {
	provider := &fakeSnippetProvider{
		snippets: map[string][]trend.Snippet{},
		delays: map[string]time.Duration{
			"a": 10 * time.Millisecond,
			"b": 10 * time.Millisecond,
			"c": 10 * time.Millisecond,
			"d": 10 * time.Millisecond,
		},
	}
	o := newTestOrchestrator(provider, Config{PerItemTimeout: time.Second, MaxConcurrent: 2, MaxSnippets: 5})

	out := o.Enrich(context.Background(), rankedItems("a", "b", "c", "d"))
	require.Len(t, out, 4)
	for _, e := range out {
		assert.False(t, e.EnrichmentFailed)
	}
	assert.Len(t, provider.calls, 4)
}

func TestOrchestrator_EmptyInput(t *testing.T) {
	o := newTestOrchestrator(&fakeSnippetProvider{}, Config{PerItemTimeout: time.Second, MaxSnippets: 5})
	assert.Empty(t, o.Enrich(context.Background(), nil))
}
