// internal/domain/niche/profile.go

package niche

import "context"

// Profile is the creator-supplied intent a ranking pass scores against. All
// text fields are compared case-insensitively; a profile is immutable once
// built for a single pass.
type Profile struct {
	// Keywords are the raw user terms. Always present, never empty.
	Keywords []string `json:"keywords"`

	// MatchPhrases are derived phrases expected to appear verbatim in
	// relevant items. Empty means "fall back to Keywords".
	MatchPhrases []string `json:"match_phrases,omitempty"`

	// Categories are coarse topical buckets the corpus also tags items
	// with. Empty means no category gating.
	Categories []string `json:"categories,omitempty"`

	// ExcludeTerms are hard negatives: any topic containing one is dropped
	// outright.
	ExcludeTerms []string `json:"exclude_terms,omitempty"`

	// Description is a one-line summary of the niche audience.
	Description string `json:"description,omitempty"`

	// Subreddits selects which communities the corpus is fetched from.
	Subreddits []string `json:"subreddits,omitempty"`
}

// EffectivePhrases returns MatchPhrases, or Keywords when none were derived.
func (p Profile) EffectivePhrases() []string {
	if len(p.MatchPhrases) > 0 {
		return p.MatchPhrases
	}
	return p.Keywords
}

// DefaultSubreddits are the communities used when profile extraction fails or
// returns none.
var DefaultSubreddits = []string{"entrepreneur", "productivity", "SideProject"}

// Degraded builds the fallback profile used when the profile provider fails:
// match phrases fall back to the raw keywords, no category gating, no
// exclusions.
func Degraded(keywords []string) Profile {
	desc := ""
	for i, kw := range keywords {
		if i > 0 {
			desc += ", "
		}
		desc += kw
	}
	return Profile{
		Keywords:    keywords,
		Description: desc,
		Subreddits:  DefaultSubreddits,
	}
}

// Provider extracts a niche profile from raw keywords. Implementations call
// out to an external model; the pipeline falls back to Degraded when they
// fail.
type Provider interface {
	AnalyzeNiche(ctx context.Context, keywords []string) (Profile, error)
}
