// internal/adapter/social/twitter.go

package social

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

// TwitterConfig contains configuration for the Twitter snippet provider.
// BearerToken selects app-only auth; the four OAuth1 credentials select
// user-context auth instead when all are set.
type TwitterConfig struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	Host              string
	Timeout           time.Duration
}

// TwitterClient fetches conversation snippets via the recent-search API.
type TwitterClient struct {
	client *twitter.Client
	logger *zap.Logger
}

// bearerAuthorizer implements twitter.Authorizer for app-only auth.
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// noopAuthorizer is used with an OAuth1-signing HTTP client, which adds its
// own Authorization header.
type noopAuthorizer struct{}

func (noopAuthorizer) Add(*http.Request) {}

// NewTwitterClient creates a new Twitter snippet provider.
func NewTwitterClient(config TwitterConfig, logger *zap.Logger) (*TwitterClient, error) {
	if config.Host == "" {
		config.Host = "https://api.twitter.com"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	var (
		httpClient *http.Client
		authorizer twitter.Authorizer
	)
	switch {
	case config.ConsumerKey != "" && config.ConsumerSecret != "" &&
		config.AccessToken != "" && config.AccessTokenSecret != "":
		oauthConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
		token := oauth1.NewToken(config.AccessToken, config.AccessTokenSecret)
		httpClient = oauthConfig.Client(oauth1.NoContext, token)
		httpClient.Timeout = config.Timeout
		authorizer = noopAuthorizer{}
	case config.BearerToken != "":
		httpClient = &http.Client{Timeout: config.Timeout}
		authorizer = bearerAuthorizer{token: config.BearerToken}
	default:
		return nil, fmt.Errorf("twitter credentials not configured")
	}

	return &TwitterClient{
		client: &twitter.Client{
			Authorizer: authorizer,
			Client:     httpClient,
			Host:       config.Host,
		},
		logger: logger,
	}, nil
}

// FetchSnippets searches recent tweets mentioning the topic. The recent-search
// API requires at least 10 results per page; the response is truncated to max
// afterwards.
func (c *TwitterClient) FetchSnippets(ctx context.Context, topic string, max int) ([]trend.Snippet, error) {
	if max <= 0 {
		max = 5
	}
	pageSize := max
	if pageSize < 10 {
		pageSize = 10
	}

	opts := twitter.TweetRecentSearchOpts{
		MaxResults:  pageSize,
		Expansions:  []twitter.Expansion{twitter.ExpansionAuthorID},
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt, twitter.TweetFieldPublicMetrics},
		UserFields:  []twitter.UserField{twitter.UserFieldUserName},
	}

	resp, err := c.client.TweetRecentSearch(ctx, searchQuery(topic), opts)
	if err != nil {
		return nil, fmt.Errorf("tweet search failed: %w", err)
	}
	if resp.Raw == nil {
		return []trend.Snippet{}, nil
	}

	authors := make(map[string]string)
	if resp.Raw.Includes != nil {
		for _, user := range resp.Raw.Includes.Users {
			if user != nil {
				authors[user.ID] = user.UserName
			}
		}
	}

	snippets := make([]trend.Snippet, 0, max)
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil || tweet.Text == "" {
			continue
		}
		snippet := trend.Snippet{
			ID:     tweet.ID,
			Text:   tweet.Text,
			Author: authors[tweet.AuthorID],
			URL:    "https://twitter.com/i/web/status/" + tweet.ID,
		}
		if tweet.PublicMetrics != nil {
			snippet.Likes = tweet.PublicMetrics.Likes
			snippet.Reposts = tweet.PublicMetrics.Retweets
			snippet.Replies = tweet.PublicMetrics.Replies
		}
		if created, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
			snippet.CreatedAt = created
		}
		snippets = append(snippets, snippet)
		if len(snippets) >= max {
			break
		}
	}
	return snippets, nil
}

// searchQuery turns a post title into a recent-search query: quoted when
// short, otherwise the longest words joined, retweets excluded either way.
func searchQuery(topic string) string {
	words := strings.Fields(topic)
	if len(words) <= 6 {
		return fmt.Sprintf("%q -is:retweet", topic)
	}

	kept := make([]string, 0, 6)
	for _, w := range words {
		if len(w) >= 4 {
			kept = append(kept, w)
		}
		if len(kept) == 6 {
			break
		}
	}
	if len(kept) == 0 {
		kept = words[:6]
	}
	return strings.Join(kept, " ") + " -is:retweet"
}
