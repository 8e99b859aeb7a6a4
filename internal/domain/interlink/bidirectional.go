package interlink

import (
	"log/slog"
	"sort"
)

type linkPair struct {
	from ContentRef
	to   ContentRef
}

// filterBidirectional drops inadmissible cross-corpus links and marks
// reciprocal pairs.
func filterBidirectional(items []BidirectionalSuggestion, p pools, logger *slog.Logger) []BidirectionalSuggestion {
	kept := make([]BidirectionalSuggestion, 0, len(items))
	seen := make(map[linkPair]struct{}, len(items))
	for _, item := range items {
		checked, reason := checkBidirectional(item, p)
		if reason == "" {
			pair := linkPair{from: checked.SourceRef(), to: checked.TargetRef()}
			if _, dup := seen[pair]; dup {
				continue
			}
			seen[pair] = struct{}{}
			kept = append(kept, checked)
			continue
		}
		logger.Debug("bidirectional suggestion rejected", "reason", string(reason),
			"sourceId", item.SourceID, "sourceType", item.SourceType,
			"targetId", item.TargetID, "targetType", item.TargetType,
			"relevanceScore", item.RelevanceScore)
	}
	for i := range kept {
		reverse := linkPair{from: kept[i].TargetRef(), to: kept[i].SourceRef()}
		if _, ok := seen[reverse]; ok {
			kept[i].Bidirectional = true
		}
	}
	return kept
}

// rankBidirectional orders links by strategy score and keeps at most
// maxPerItem per link source.
func rankBidirectional(items []BidirectionalSuggestion, strategy RankingStrategy, maxPerItem int) []BidirectionalSuggestion {
	ranked := append([]BidirectionalSuggestion(nil), items...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return strategy.Score(ranked[i].Suggestion) > strategy.Score(ranked[j].Suggestion)
	})
	out := make([]BidirectionalSuggestion, 0, len(ranked))
	perSource := make(map[ContentRef]int)
	for _, item := range ranked {
		ref := item.SourceRef()
		if maxPerItem > 0 && perSource[ref] >= maxPerItem {
			continue
		}
		perSource[ref]++
		out = append(out, item)
	}
	return out
}
