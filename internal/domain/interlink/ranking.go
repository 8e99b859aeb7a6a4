package interlink

import "sort"

// RankingStrategy orders admissible suggestions.
type RankingStrategy interface {
	// Name identifies the strategy in cache keys and metrics.
	Name() string
	// Threshold is the minimum RelevanceScore a suggestion needs to survive validation.
	Threshold() float64
	// Score is the sort key, higher first.
	Score(s Suggestion) float64
	// Rank sorts descending by Score, stable for ties, keeps the best-scoring
	// suggestion per target and then at most limit items.
	Rank(items []Suggestion, limit int) []Suggestion
}

// Composite score weights.
const (
	WeightRelevance = 0.6
	WeightSemantic  = 0.15
	WeightIntent    = 0.15
	WeightSEO       = 0.1
)

// CompositeScore blends the normalized relevance with the model's sub-scores.
func CompositeScore(s Suggestion) float64 {
	return s.RelevanceScore/100*WeightRelevance +
		s.SemanticSimilarity*WeightSemantic +
		s.UserIntentAlignment*WeightIntent +
		s.SEOImpact*WeightSEO
}

func relevanceOnly(s Suggestion) float64 {
	return s.RelevanceScore
}

type strategy struct {
	name      string
	threshold float64
	score     func(Suggestion) float64
}

var (
	// StrategyWeighted ranks primary suggestions by CompositeScore.
	StrategyWeighted RankingStrategy = strategy{name: "weighted", threshold: PrimaryThreshold, score: CompositeScore}
	// StrategyRelevance ranks the legacy question path by raw relevance.
	StrategyRelevance RankingStrategy = strategy{name: "relevance", threshold: LegacyThreshold, score: relevanceOnly}
	// StrategyBidirectional ranks cross-corpus links by raw relevance.
	StrategyBidirectional RankingStrategy = strategy{name: "bidirectional", threshold: BidirectionalThreshold, score: relevanceOnly}
)

func (s strategy) Name() string                  { return s.name }
func (s strategy) Threshold() float64            { return s.threshold }
func (s strategy) Score(item Suggestion) float64 { return s.score(item) }

func (s strategy) Rank(items []Suggestion, limit int) []Suggestion {
	ranked := append([]Suggestion(nil), items...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.score(ranked[i]) > s.score(ranked[j])
	})
	ranked = bestPerTarget(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []Suggestion{}
	}
	return ranked
}

// bestPerTarget keeps the first suggestion for each target of a ranked list.
func bestPerTarget(ranked []Suggestion) []Suggestion {
	seen := make(map[ContentRef]struct{}, len(ranked))
	out := ranked[:0]
	for _, item := range ranked {
		ref := item.Ref()
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, item)
	}
	return out
}
