package ranking

import (
	"math"
	"strings"

	"mtc/internal/domain/niche"
	"mtc/internal/domain/trend"
)

// ScoreExcluded is the sentinel relevance for items whose topic contains a
// hard-exclude term. Ranking drops it along with everything else <= 0.
const ScoreExcluded = -1.0

// GatePolicy controls how the category gate treats items with no category
// overlap against a profile that has categories.
type GatePolicy int

const (
	// GateLenient keeps ungated items that still accumulate term matches,
	// and gives gated-but-unmatched items a small floor score so on-topic
	// items with sparse keyword overlap can still surface.
	GateLenient GatePolicy = iota

	// GateStrict zeroes any item with no category overlap, regardless of
	// term matches.
	GateStrict
)

// Weights holds the scoring coefficients. The popularity terms are sized so
// they can reorder items with equal term relevance but never lift a
// zero-relevance item past one with a genuine match.
type Weights struct {
	Keyword       float64 // whole-word keyword match on the topic
	Phrase        float64 // match-phrase hit on the topic
	Related       float64 // match-phrase hit on a related term
	CategoryBonus float64 // per category overlap, only when terms matched
	Floor         float64 // category overlap but zero term relevance
	MinPhraseLen  int     // phrases shorter than this are skipped as noise
	VolumeCoeff   float64 // multiplier on log10(volume+1)
	GrowthDivisor float64
	GrowthCap     float64
}

// DefaultWeights returns the standard scoring coefficients.
func DefaultWeights() Weights {
	return Weights{
		Keyword:       50,
		Phrase:        30,
		Related:       8,
		CategoryBonus: 18,
		Floor:         5,
		MinPhraseLen:  4,
		VolumeCoeff:   1.2,
		GrowthDivisor: 100,
		GrowthCap:     5,
	}
}

// Scorer computes the relevance of one corpus item against one niche profile.
// It is pure: identical inputs always produce an identical score.
type Scorer struct {
	weights Weights
	policy  GatePolicy
}

// NewScorer creates a scorer with the given coefficients and gate policy.
func NewScorer(weights Weights, policy GatePolicy) *Scorer {
	return &Scorer{weights: weights, policy: policy}
}

// Score returns the relevance of item against profile, or ScoreExcluded when
// the topic contains a hard-exclude term. Missing item fields behave as their
// zero values; the function never fails.
func (s *Scorer) Score(item trend.Item, profile niche.Profile) float64 {
	topic := Normalize(item.Topic())
	if topic == "" {
		return 0
	}

	// Hard exclusion wins over every other signal.
	for _, term := range profile.ExcludeTerms {
		if t := Normalize(term); t != "" && strings.Contains(topic, t) {
			return ScoreExcluded
		}
	}

	// Category gate. An empty profile category set passes unconditionally
	// but carries no overlap signal.
	overlaps := 0
	gated := len(profile.Categories) == 0
	if !gated {
		overlaps = categoryOverlaps(item.Categories(), profile.Categories)
		gated = overlaps > 0
	}
	if !gated && s.policy == GateStrict {
		return 0
	}

	relevance := s.termRelevance(topic, item.RelatedTerms(), profile)

	switch {
	case relevance > 0:
		relevance += float64(overlaps) * s.weights.CategoryBonus
	case overlaps > 0:
		// On-topic but keyword-sparse: floor score keeps it visible when
		// strong matches are scarce.
		relevance = s.weights.Floor
	default:
		// No terms, no category signal. Popularity alone must never
		// promote an irrelevant item.
		return 0
	}

	relevance += math.Log10(item.Volume()+1) * s.weights.VolumeCoeff
	relevance += math.Min(item.Growth()/s.weights.GrowthDivisor, s.weights.GrowthCap)

	return relevance
}

func (s *Scorer) termRelevance(topic string, relatedTerms []string, profile niche.Profile) float64 {
	var relevance float64

	for _, kw := range profile.Keywords {
		if Matches(topic, Normalize(kw)) {
			relevance += s.weights.Keyword
		}
	}

	for _, phrase := range profile.EffectivePhrases() {
		p := Normalize(phrase)
		if len(p) < s.weights.MinPhraseLen {
			continue
		}
		if Matches(topic, p) {
			relevance += s.weights.Phrase
		}
		for _, term := range relatedTerms {
			if Matches(Normalize(term), p) {
				relevance += s.weights.Related
				break
			}
		}
	}

	return relevance
}

// categoryOverlaps counts profile categories that overlap any item category,
// by substring containment in either direction.
func categoryOverlaps(itemCats, profileCats []string) int {
	count := 0
	for _, pc := range profileCats {
		p := Normalize(pc)
		if p == "" {
			continue
		}
		for _, ic := range itemCats {
			i := Normalize(ic)
			if i == "" {
				continue
			}
			if strings.Contains(i, p) || strings.Contains(p, i) {
				count++
				break
			}
		}
	}
	return count
}
