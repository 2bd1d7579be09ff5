// internal/adapter/social/reddit.go

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

// RedditConfig contains configuration for the Reddit client.
type RedditConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	TimeRange string // hour, day, week, month, year, all
}

// RedditClient fetches the raw trend corpus from the Reddit JSON API.
type RedditClient struct {
	httpClient *http.Client
	config     RedditConfig
	logger     *zap.Logger
}

// redditPost mirrors the fields of a post in the Reddit listing payload.
type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Created     float64 `json:"created_utc"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Flair       string  `json:"link_flair_text"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// redditListing is the envelope of a Reddit listing response.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditComment is one comment on a post, used for narrative synthesis.
type RedditComment struct {
	Body  string `json:"body"`
	Score int    `json:"score"`
}

// NewRedditClient creates a new Reddit API client.
func NewRedditClient(config RedditConfig, logger *zap.Logger) *RedditClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.reddit.com"
	}
	if config.UserAgent == "" {
		config.UserAgent = "mtc-app/1.0"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.TimeRange == "" {
		config.TimeRange = "day"
	}
	return &RedditClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
	}
}

// FetchCorpus fetches top posts from each community and returns them as
// corpus items in feed order. A single failing subreddit is skipped; the call
// errors only when every community fails. The fresh flag is ignored here: the
// live API is always fresh, and caching is layered on by storage.CachedCorpus.
func (c *RedditClient) FetchCorpus(ctx context.Context, communities []string, limit int, fresh bool) ([]trend.Item, error) {
	if limit <= 0 {
		limit = 25
	}

	var (
		items   []trend.Item
		lastErr error
	)
	for _, sub := range communities {
		posts, err := c.topPosts(ctx, sub, limit)
		if err != nil {
			c.logger.Warn("subreddit fetch failed",
				zap.String("subreddit", sub),
				zap.Error(err))
			lastErr = err
			continue
		}
		for _, post := range posts {
			items = append(items, trend.NewRedditItem(toRedditPost(post)))
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all subreddit fetches failed: %w", lastErr)
	}
	return items, nil
}

func (c *RedditClient) topPosts(ctx context.Context, subreddit string, limit int) ([]redditPost, error) {
	if subreddit == "" {
		subreddit = "popular"
	}

	endpoint := fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=%s",
		c.config.BaseURL, url.PathEscape(subreddit), limit, c.config.TimeRange)

	var listing redditListing
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, err
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// GetComments fetches up to amount top-level comments for a post, identified
// by its permalink or full URL.
func (c *RedditClient) GetComments(ctx context.Context, postURL string, amount int) ([]RedditComment, error) {
	if amount <= 0 {
		amount = 20
	}

	endpoint := strings.TrimSuffix(postURL, "/")
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = c.config.BaseURL + "/" + strings.TrimPrefix(endpoint, "/")
	}
	endpoint = fmt.Sprintf("%s.json?limit=%d&sort=top", endpoint, amount)

	// A comments response is a two-element array: the post listing, then
	// the comment listing.
	var payload []redditCommentListing
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("unexpected comments response shape")
	}

	comments := make([]RedditComment, 0, amount)
	for _, child := range payload[1].Data.Children {
		if child.Data.Body == "" {
			continue
		}
		comments = append(comments, RedditComment{
			Body:  child.Data.Body,
			Score: child.Data.Score,
		})
		if len(comments) >= amount {
			break
		}
	}
	return comments, nil
}

type redditCommentListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Body  string `json:"body"`
				Score int    `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *RedditClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Reddit rate-limits requests without a User-Agent aggressively.
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Reddit API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Reddit API returned status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Reddit API response: %w", err)
	}
	return nil
}

func toRedditPost(p redditPost) trend.RedditPost {
	engagement := 0.0
	if p.Score > 0 {
		engagement = float64(p.NumComments) / float64(p.Score) * 100
	}
	return trend.RedditPost{
		ID:          p.ID,
		Title:       p.Title,
		Subreddit:   p.Subreddit,
		Flair:       p.Flair,
		Preview:     p.SelfText,
		URL:         p.URL,
		Permalink:   p.Permalink,
		Author:      p.Author,
		Upvotes:     p.Score,
		NumComments: p.NumComments,
		UpvoteRatio: p.UpvoteRatio,
		Engagement:  engagement,
		Created:     time.Unix(int64(p.Created), 0).UTC(),
	}
}
