// internal/domain/trend/provider.go

package trend

import "context"

// CorpusProvider fetches raw trend items for a set of communities. The fresh
// flag bypasses any caching layer; providers may return fewer items than
// requested.
type CorpusProvider interface {
	FetchCorpus(ctx context.Context, communities []string, limit int, fresh bool) ([]Item, error)
}

// SnippetProvider fetches supplementary conversation snippets for a topic.
// Implementations must honor the deadline on ctx; enrichment calls each carry
// their own timeout.
type SnippetProvider interface {
	FetchSnippets(ctx context.Context, topic string, max int) ([]Snippet, error)
}
