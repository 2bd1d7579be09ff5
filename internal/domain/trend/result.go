// internal/domain/trend/result.go

package trend

import "time"

// ScoredItem is a corpus item with its computed relevance. A relevance of
// exactly -1 marks a hard-excluded item; anything <= 0 is dropped by ranking.
type ScoredItem struct {
	Item      Item    `json:"item"`
	Relevance float64 `json:"relevance"`
}

// Snippet is a supplementary conversation record attached during enrichment.
// The pipeline does not interpret its content beyond counting and truncating.
type Snippet struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	Likes     int       `json:"likes,omitempty"`
	Reposts   int       `json:"reposts,omitempty"`
	Replies   int       `json:"replies,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// EnrichedItem is a ranked item after the enrichment stage. Snippets is empty
// and EnrichmentFailed is set when the snippet fetch for this item timed out
// or errored; the item keeps its rank position either way.
type EnrichedItem struct {
	ScoredItem
	Snippets         []Snippet `json:"snippets"`
	EnrichmentFailed bool      `json:"enrichment_failed"`
}
