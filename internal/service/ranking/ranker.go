package ranking

import (
	"sort"

	"mtc/internal/domain/trend"
)

// Rank drops non-positive scores (including the exclusion sentinel), collapses
// items with equivalent normalized topics, and orders the rest by relevance
// descending. The input must be in corpus order: the first occurrence of a
// duplicate topic wins regardless of the later duplicate's score, and the sort
// is stable so ties keep corpus order and identical inputs always rank
// identically. A positive limit truncates the result.
func Rank(scored []trend.ScoredItem, limit int) []trend.ScoredItem {
	kept := make([]trend.ScoredItem, 0, len(scored))
	seen := make(map[string]struct{}, len(scored))

	for _, s := range scored {
		if s.Relevance <= 0 {
			continue
		}
		topic := Normalize(s.Item.Topic())
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		kept = append(kept, s)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Relevance > kept[j].Relevance
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
