package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ai tools", Normalize("  AI Tools  "))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "side-hustle", Normalize("Side-Hustle"))
}

func TestMatches_SingleTokenWholeWord(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		phrase   string
		want     bool
	}{
		{
			name:     "token inside larger word does not match",
			haystack: "new approval process announced",
			phrase:   "app",
			want:     false,
		},
		{
			name:     "token as standalone word matches",
			haystack: "best app for productivity",
			phrase:   "app",
			want:     true,
		},
		{
			name:     "token at start of haystack",
			haystack: "app of the day",
			phrase:   "app",
			want:     true,
		},
		{
			name:     "token at end of haystack",
			haystack: "i shipped my first app",
			phrase:   "app",
			want:     true,
		},
		{
			name:     "token bounded by punctuation",
			haystack: "my app: a retrospective",
			phrase:   "app",
			want:     true,
		},
		{
			name:     "digits extend a word",
			haystack: "app2 launch thread",
			phrase:   "app",
			want:     false,
		},
		{
			name:     "later occurrence matches after an embedded one",
			haystack: "approval for my app",
			phrase:   "app",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.haystack, tt.phrase))
		})
	}
}

func TestMatches_MultiWordSubstring(t *testing.T) {
	assert.True(t, Matches("10 side hustle ideas for 2025", "side hustle"))
	assert.True(t, Matches("the ai tools i use daily", "ai tools"))
	assert.False(t, Matches("hustle culture is over", "side hustle"))
}

func TestMatches_EmptyPhrase(t *testing.T) {
	assert.False(t, Matches("anything at all", ""))
	assert.False(t, Matches("", ""))
}
