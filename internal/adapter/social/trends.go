// internal/adapter/social/trends.go

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

// TrendsConfig contains configuration for the search-trends feed client.
type TrendsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TrendsClient fetches the corpus from a search-trends feed service. It is the
// alternative corpus source to Reddit; the feed honors a fresh flag that
// bypasses its server-side cache.
type TrendsClient struct {
	httpClient *http.Client
	config     TrendsConfig
	logger     *zap.Logger
}

type trendsFeedEntry struct {
	Query          string   `json:"query"`
	Categories     []string `json:"categories"`
	RelatedQueries []string `json:"related_queries"`
	SearchVolume   float64  `json:"search_volume"`
	GrowthPct      float64  `json:"growth_pct"`
}

type trendsFeedResponse struct {
	Success bool              `json:"success"`
	Trends  []trendsFeedEntry `json:"trends"`
	Count   int               `json:"count"`
}

// NewTrendsClient creates a new search-trends feed client.
func NewTrendsClient(config TrendsConfig, logger *zap.Logger) *TrendsClient {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &TrendsClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
	}
}

// FetchCorpus fetches trending queries from the feed. The communities
// argument is unused for this source; the fresh flag is forwarded so the feed
// serves uncached data on escalation.
func (c *TrendsClient) FetchCorpus(ctx context.Context, communities []string, limit int, fresh bool) ([]trend.Item, error) {
	if limit <= 0 {
		limit = 25
	}

	endpoint := fmt.Sprintf("%s/trends/google?limit=%d", c.config.BaseURL, limit)
	if fresh {
		endpoint += "&fresh=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to trends feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends feed returned status code %d", resp.StatusCode)
	}

	var feed trendsFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode trends feed response: %w", err)
	}

	items := make([]trend.Item, 0, len(feed.Trends))
	for _, entry := range feed.Trends {
		items = append(items, trend.NewSearchItem(trend.SearchTrend{
			Query:           entry.Query,
			TrendCategories: entry.Categories,
			RelatedQueries:  entry.RelatedQueries,
			SearchVolume:    entry.SearchVolume,
			GrowthPct:       entry.GrowthPct,
		}))
	}

	c.logger.Debug("fetched trends feed",
		zap.Int("count", len(items)),
		zap.Bool("fresh", fresh))
	return items, nil
}
