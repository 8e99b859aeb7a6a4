package interlink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/content-interlinker/internal/domain/generation"
)

func TestBuildSuggestionRequest(t *testing.T) {
	cfg := Config{Temperature: 0.2, MaxTokens: 900}.withDefaults()
	long := strings.Repeat("very long candidate body ", 40)
	candidates := candidatesFor([]Content{{ID: 7, Type: TypeMainPage, Title: "Refund Policy", Content: long}}, ContentRef{}, cfg.ExcerptLength)
	src := source{ref: ContentRef{Type: TypeMainPage}, title: "Refunds", content: refundSource}

	req := buildSuggestionRequest(src, candidates, 4, cfg)

	require.Equal(t, suggestionSystemPrompt, req.System)
	require.Contains(t, req.User, `Source main site page titled "Refunds":`)
	require.Contains(t, req.User, refundSource)
	require.Contains(t, req.User, `"title":"Refund Policy"`)
	require.NotContains(t, req.User, long)
	require.Contains(t, req.User, "Propose up to 8 links")
	require.Equal(t, generation.Options{Temperature: 0.2, MaxTokens: 900, ResponseFormat: generation.FormatJSONObject}, req.Options)
}

func TestBuildBidirectionalRequestCarriesFullContent(t *testing.T) {
	cfg := Config{}.withDefaults()
	long := strings.Repeat("forum body ", 60)

	req := buildBidirectionalRequest([]Content{{ID: 1, Type: TypeQuestion, Content: long}}, mainSitePool, 3, cfg)

	require.Equal(t, bidirectionalSystemPrompt, req.System)
	require.Contains(t, req.User, long)
	require.Contains(t, req.User, mainSitePool[0].Content)
	require.Contains(t, req.User, "Propose at most 6 links per source item.")
	require.Equal(t, defaultMaxTokens, req.Options.MaxTokens)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{ExcerptLength: 20}.withDefaults()
	require.Equal(t, 3, cfg.DefaultLimit)
	require.Equal(t, 3, cfg.BidirectionalMaxPerItem)
	require.Equal(t, 5, cfg.LegacyLimit)
	require.Equal(t, 150, cfg.ExcerptLength)
	require.Equal(t, 250, Config{ExcerptLength: 900}.withDefaults().ExcerptLength)
}
