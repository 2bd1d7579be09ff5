package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mtc/internal/domain/trend"
)

const listingFixture = `{
	"data": {
		"children": [
			{"data": {
				"id": "abc1",
				"title": "I quit my job to build a SaaS",
				"permalink": "/r/Entrepreneur/comments/abc1/i_quit/",
				"url": "https://reddit.com/r/Entrepreneur/comments/abc1/i_quit/",
				"score": 200,
				"num_comments": 50,
				"subreddit": "Entrepreneur",
				"created_utc": 1756500000,
				"selftext": "long story",
				"author": "founder42",
				"link_flair_text": "Case Study",
				"upvote_ratio": 0.93
			}},
			{"data": {
				"id": "abc2",
				"title": "Zero upvotes so far",
				"score": 0,
				"num_comments": 3,
				"subreddit": "Entrepreneur"
			}}
		]
	}
}`

const commentsFixture = `[
	{"data": {"children": [{"data": {"title": "the post itself"}}]}},
	{"data": {"children": [
		{"data": {"body": "great writeup", "score": 120}},
		{"data": {"body": "", "score": 5}},
		{"data": {"body": "disagree with point 2", "score": 40}}
	]}}
]`

func newRedditTestServer(t *testing.T, handler http.HandlerFunc) (*RedditClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewRedditClient(RedditConfig{
		BaseURL:   srv.URL,
		UserAgent: "mtc-test/1.0",
		Timeout:   2 * time.Second,
	}, zap.NewNop())
	return client, srv
}

func TestRedditClient_FetchCorpus(t *testing.T) {
	var gotUserAgent, gotPath string
	client, _ := newRedditTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Write([]byte(listingFixture))
	})

	items, err := client.FetchCorpus(context.Background(), []string{"Entrepreneur"}, 25, false)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "mtc-test/1.0", gotUserAgent)
	assert.Equal(t, "/r/Entrepreneur/top.json", gotPath)

	first := items[0]
	assert.Equal(t, trend.KindRedditPost, first.Kind)
	assert.Equal(t, "I quit my job to build a SaaS", first.Topic())
	assert.Equal(t, []string{"Entrepreneur", "Case Study"}, first.Categories())
	assert.Equal(t, 200.0, first.Volume())
	assert.InDelta(t, 25.0, first.Growth(), 1e-9) // 50 comments on 200 upvotes

	// Zero-score posts keep a zero engagement rate instead of dividing by zero.
	assert.Equal(t, 0.0, items[1].Growth())
}

func TestRedditClient_FetchCorpusSkipsFailingCommunities(t *testing.T) {
	client, _ := newRedditTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/broken/top.json" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(listingFixture))
	})

	items, err := client.FetchCorpus(context.Background(), []string{"broken", "Entrepreneur"}, 25, false)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRedditClient_FetchCorpusAllCommunitiesFail(t *testing.T) {
	client, _ := newRedditTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchCorpus(context.Background(), []string{"a", "b"}, 25, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all subreddit fetches failed")
}

func TestRedditClient_GetComments(t *testing.T) {
	var gotQuery string
	client, srv := newRedditTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(commentsFixture))
	})

	comments, err := client.GetComments(context.Background(), srv.URL+"/r/Entrepreneur/comments/abc1/i_quit/", 20)
	require.NoError(t, err)

	assert.Equal(t, "limit=20&sort=top", gotQuery)
	require.Len(t, comments, 2)
	assert.Equal(t, RedditComment{Body: "great writeup", Score: 120}, comments[0])
	assert.Equal(t, RedditComment{Body: "disagree with point 2", Score: 40}, comments[1])
}

func TestRedditClient_GetCommentsRelativePermalink(t *testing.T) {
	var gotPath string
	client, _ := newRedditTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(commentsFixture))
	})

	_, err := client.GetComments(context.Background(), "/r/Entrepreneur/comments/abc1/i_quit/", 5)
	require.NoError(t, err)
	assert.Equal(t, "/r/Entrepreneur/comments/abc1/i_quit.json", gotPath)
}

func TestRedditClient_GetCommentsBadShape(t *testing.T) {
	client, srv := newRedditTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"data": {"children": []}}]`))
	})

	_, err := client.GetComments(context.Background(), srv.URL+"/r/x/comments/1/t/", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected comments response shape")
}
