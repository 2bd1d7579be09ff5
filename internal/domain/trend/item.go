// internal/domain/trend/item.go

package trend

import "time"

// Kind discriminates the two corpus item shapes.
type Kind string

const (
	KindRedditPost  Kind = "reddit"
	KindSearchTrend Kind = "search"
)

// RedditPost is a post pulled from a subreddit feed.
type RedditPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subreddit   string    `json:"subreddit"`
	Flair       string    `json:"flair,omitempty"`
	Preview     string    `json:"preview,omitempty"`
	URL         string    `json:"url,omitempty"`
	Permalink   string    `json:"permalink,omitempty"`
	Author      string    `json:"author,omitempty"`
	Upvotes     int       `json:"upvotes"`
	NumComments int       `json:"num_comments"`
	UpvoteRatio float64   `json:"upvote_ratio,omitempty"`
	Engagement  float64   `json:"engagement,omitempty"`
	Created     time.Time `json:"created,omitempty"`
}

// SearchTrend is an entry from a search-trends feed.
type SearchTrend struct {
	Query           string   `json:"query"`
	TrendCategories []string `json:"categories,omitempty"`
	RelatedQueries  []string `json:"related_queries,omitempty"`
	SearchVolume    float64  `json:"search_volume"`
	GrowthPct       float64  `json:"growth_pct"`
}

// Item is a single corpus candidate. Exactly one of Reddit or Search is set,
// according to Kind; the accessor methods expose the common subset so scoring
// never has to inspect the variant directly.
type Item struct {
	Kind   Kind         `json:"kind"`
	Reddit *RedditPost  `json:"reddit,omitempty"`
	Search *SearchTrend `json:"search,omitempty"`
}

// NewRedditItem wraps a Reddit post as a corpus item.
func NewRedditItem(post RedditPost) Item {
	return Item{Kind: KindRedditPost, Reddit: &post}
}

// NewSearchItem wraps a search-trends entry as a corpus item.
func NewSearchItem(st SearchTrend) Item {
	return Item{Kind: KindSearchTrend, Search: &st}
}

// Topic returns the title or query text used for matching.
func (it Item) Topic() string {
	switch it.Kind {
	case KindRedditPost:
		if it.Reddit != nil {
			return it.Reddit.Title
		}
	case KindSearchTrend:
		if it.Search != nil {
			return it.Search.Query
		}
	}
	return ""
}

// Categories returns the coarse topical buckets the item is tagged with.
// Reddit posts are bucketed by subreddit and flair.
func (it Item) Categories() []string {
	switch it.Kind {
	case KindRedditPost:
		if it.Reddit == nil {
			return nil
		}
		cats := make([]string, 0, 2)
		if it.Reddit.Subreddit != "" {
			cats = append(cats, it.Reddit.Subreddit)
		}
		if it.Reddit.Flair != "" {
			cats = append(cats, it.Reddit.Flair)
		}
		return cats
	case KindSearchTrend:
		if it.Search != nil {
			return it.Search.TrendCategories
		}
	}
	return nil
}

// RelatedTerms returns secondary text associated with the item.
func (it Item) RelatedTerms() []string {
	if it.Kind == KindSearchTrend && it.Search != nil {
		return it.Search.RelatedQueries
	}
	return nil
}

// Volume returns the popularity volume signal (upvotes or search volume).
func (it Item) Volume() float64 {
	switch it.Kind {
	case KindRedditPost:
		if it.Reddit != nil {
			return float64(it.Reddit.Upvotes)
		}
	case KindSearchTrend:
		if it.Search != nil {
			return it.Search.SearchVolume
		}
	}
	return 0
}

// Growth returns the popularity growth signal (engagement rate or growth %).
func (it Item) Growth() float64 {
	switch it.Kind {
	case KindRedditPost:
		if it.Reddit != nil {
			return it.Reddit.Engagement
		}
	case KindSearchTrend:
		if it.Search != nil {
			return it.Search.GrowthPct
		}
	}
	return 0
}
