// internal/adapter/anthropic/client.go

package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mtc/internal/adapter/social"
	"mtc/internal/domain/niche"
)

const apiVersion = "2023-06-01"

// Config contains configuration for the Anthropic messages client.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client extracts niche profiles and synthesizes comment narratives through
// the Anthropic messages API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger
}

// Narrative is one distinct perspective extracted from a post's comments.
type Narrative struct {
	Headline string `json:"headline"`
	Insight  string `json:"insight"`
	Angle    string `json:"angle"`
}

// NewClient creates a new Anthropic client.
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.Model == "" {
		config.Model = "claude-haiku-4-5"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 600
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
	}
}

// AnalyzeNiche asks the model which communities and terms describe the niche
// behind the given keywords and returns the resulting profile. Callers fall
// back to niche.Degraded on error.
func (c *Client) AnalyzeNiche(ctx context.Context, keywords []string) (niche.Profile, error) {
	nicheString := strings.Join(keywords, ", ")

	prompt := fmt.Sprintf(`You are helping a content creator find what their niche audience is talking about RIGHT NOW.

Their niche: %q

Return ONLY valid JSON (no markdown, no explanation):
{
  "subreddits": ["6-8 real, active subreddit names (no r/ prefix), the most specific communities for this niche"],
  "description": "one sharp sentence describing this niche audience and what they care about",
  "match_terms": ["8-12 short terms or phrases likely to appear verbatim in relevant post titles"],
  "categories": ["2-4 coarse topical buckets, e.g. Technology, Business"],
  "exclude_terms": ["0-4 terms whose presence makes a post irrelevant to this niche"]
}`, nicheString)

	var parsed struct {
		Subreddits   []string `json:"subreddits"`
		Description  string   `json:"description"`
		MatchTerms   []string `json:"match_terms"`
		Categories   []string `json:"categories"`
		ExcludeTerms []string `json:"exclude_terms"`
	}
	if err := c.completeJSON(ctx, prompt, &parsed); err != nil {
		return niche.Profile{}, err
	}

	subreddits := parsed.Subreddits
	if len(subreddits) > 8 {
		subreddits = subreddits[:8]
	}
	description := parsed.Description
	if description == "" {
		description = nicheString
	}

	return niche.Profile{
		Keywords:     keywords,
		MatchPhrases: parsed.MatchTerms,
		Categories:   parsed.Categories,
		ExcludeTerms: parsed.ExcludeTerms,
		Description:  description,
		Subreddits:   subreddits,
	}, nil
}

// Narratives synthesizes the top three narratives from a post's comments.
// Only the top fifteen comments by score are sent to the model.
func (c *Client) Narratives(ctx context.Context, title string, comments []social.RedditComment) ([]Narrative, error) {
	if len(comments) > 15 {
		comments = comments[:15]
	}

	var b strings.Builder
	for i, comment := range comments {
		fmt.Fprintf(&b, "[%d] (%d upvotes): %s\n\n", i+1, comment.Score, comment.Body)
	}

	prompt := fmt.Sprintf(`You are analyzing Reddit comments to extract the top 3 narratives for a content creator.

Post title: %q

Top comments by upvotes:
%s
Identify the 3 most distinct narratives or perspectives that people are expressing in these comments. Each narrative should represent a meaningful angle that a content creator could make content about.

Return ONLY valid JSON (no markdown, no explanation):
{
  "narratives": [
    {
      "headline": "5-8 word punchy headline for this narrative",
      "insight": "1-2 sentences on what people are saying and why it matters for content",
      "angle": "One specific content idea this suggests"
    },
    { ... },
    { ... }
  ]
}`, title, b.String())

	var parsed struct {
		Narratives []Narrative `json:"narratives"`
	}
	if err := c.completeJSON(ctx, prompt, &parsed); err != nil {
		return nil, err
	}
	return parsed.Narratives, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// completeJSON sends a single user message and decodes the model's JSON reply
// into out, tolerating markdown code fences around the payload.
func (c *Client) completeJSON(ctx context.Context, prompt string, out any) error {
	if c.config.APIKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode Anthropic API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return fmt.Errorf("Anthropic API error: %s", decoded.Error.Message)
		}
		return fmt.Errorf("Anthropic API returned status code %d", resp.StatusCode)
	}
	if len(decoded.Content) == 0 || decoded.Content[0].Type != "text" {
		return fmt.Errorf("Anthropic API returned no text content")
	}

	text := stripFences(decoded.Content[0].Text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("model returned unparseable JSON: %w", err)
	}
	return nil
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
