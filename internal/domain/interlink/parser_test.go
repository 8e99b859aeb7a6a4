package interlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeResponseShapes(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		shape Shape
		items int
	}{
		{name: "suggestions object", raw: `{"suggestions":[{"contentId":1},{"contentId":2}]}`, shape: ShapeSuggestionsObject, items: 2},
		{name: "bare array", raw: `[{"contentId":1}]`, shape: ShapeBareArray, items: 1},
		{name: "interlinking object", raw: `{"interlinkingSuggestions":[{"id":4}]}`, shape: ShapeInterlinkingObject, items: 1},
		{name: "fenced", raw: "```json\n{\"suggestions\":[{\"contentId\":1}]}\n```", shape: ShapeSuggestionsObject, items: 1},
		{name: "fenced upper case tag", raw: "```JSON\n{\"suggestions\":[{\"contentId\":1}]}\n```", shape: ShapeSuggestionsObject, items: 1},
		{name: "fenced without tag", raw: "```\n[{\"contentId\":1},{\"contentId\":2}]\n```", shape: ShapeBareArray, items: 2},
		{name: "prose before object", raw: "Here you go:\n{\"suggestions\":[{\"contentId\":1}]}", shape: ShapeSuggestionsObject, items: 1},
		{name: "prose around fence", raw: "Sure.\n```json\n{\"interlinkingSuggestions\":[{\"id\":4}]}\n```\nLet me know.", shape: ShapeInterlinkingObject, items: 1},
		{name: "prose after array", raw: "[{\"contentId\":1}] hope this helps", shape: ShapeBareArray, items: 1},
		{name: "empty list", raw: `{"suggestions":[]}`, shape: ShapeSuggestionsObject, items: 0},
		{name: "non objects dropped", raw: `[1,"two",{"contentId":3},null]`, shape: ShapeBareArray, items: 1},
		{name: "not json", raw: "not json", shape: ShapeUnrecognized},
		{name: "empty", raw: "   ", shape: ShapeUnrecognized},
		{name: "unknown key", raw: `{"links":[{"contentId":1}]}`, shape: ShapeUnrecognized},
		{name: "suggestions not a list", raw: `{"suggestions":"none"}`, shape: ShapeUnrecognized},
		{name: "truncated", raw: `{"suggestions":[{"contentId":1}`, shape: ShapeUnrecognized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeResponse(tc.raw)
			require.Equal(t, tc.shape, got.shape)
			require.Len(t, got.items, tc.items)
		})
	}
}

func TestParseSuggestionsNotJSON(t *testing.T) {
	got, shape := parseSuggestions("not json")
	require.Empty(t, got)
	require.False(t, shape.Recognized())
	require.Equal(t, "unrecognized", shape.String())
}

func TestParseSuggestionsMapsFields(t *testing.T) {
	raw := `{"suggestions":[{"contentId":7,"contentType":"main_page","title":"Refund Policy","relevanceScore":88,"anchorText":"refund policy","contextRelevance":"explains refunds","semanticSimilarity":0.9,"userIntentAlignment":"0.8","seoImpact":0.5,"preview":"How refunds work"}]}`

	got, shape := parseSuggestions(raw)

	require.Equal(t, ShapeSuggestionsObject, shape)
	require.Equal(t, []Suggestion{{
		ContentID:           7,
		ContentType:         TypeMainPage,
		Title:               "Refund Policy",
		RelevanceScore:      88,
		AnchorText:          "refund policy",
		ContextRelevance:    "explains refunds",
		SemanticSimilarity:  0.9,
		UserIntentAlignment: 0.8,
		SEOImpact:           0.5,
		Preview:             "How refunds work",
	}}, got)
}

func TestParseSuggestionsAliasesAndCoercion(t *testing.T) {
	raw := `[{"id":"12","type":"question","relevanceScore":"140","semanticSimilarity":-0.3,"userIntentAlignment":"high","seoImpact":null,"anchorText":42}]`

	got, shape := parseSuggestions(raw)

	require.Equal(t, ShapeBareArray, shape)
	require.Len(t, got, 1)
	item := got[0]
	require.Equal(t, int64(12), item.ContentID)
	require.Equal(t, TypeQuestion, item.ContentType)
	require.Equal(t, float64(100), item.RelevanceScore)
	require.Zero(t, item.SemanticSimilarity)
	require.Zero(t, item.UserIntentAlignment)
	require.Zero(t, item.SEOImpact)
	require.Empty(t, item.AnchorText)
	require.Empty(t, item.Title)
}

func TestParseSuggestionsPrefersCanonicalKeys(t *testing.T) {
	got, _ := parseSuggestions(`[{"contentId":5,"id":9,"contentType":"answer","type":"question"}]`)
	require.Equal(t, int64(5), got[0].ContentID)
	require.Equal(t, TypeAnswer, got[0].ContentType)
}

func TestParseBidirectionalMirrorsTarget(t *testing.T) {
	raw := "```\n" + `{"suggestions":[{"sourceId":1,"sourceType":"question","sourceTitle":"Refunds?","targetId":10,"targetType":"main_page","targetTitle":"Refund Policy","relevanceScore":91,"anchorText":"refund policy","bidirectional":"true"}]}` + "\n```"

	got, shape := parseBidirectional(raw)

	require.Equal(t, ShapeSuggestionsObject, shape)
	require.Len(t, got, 1)
	item := got[0]
	require.Equal(t, ContentRef{Type: TypeQuestion, ID: 1}, item.SourceRef())
	require.Equal(t, ContentRef{Type: TypeMainPage, ID: 10}, item.TargetRef())
	require.Equal(t, int64(10), item.ContentID)
	require.Equal(t, TypeMainPage, item.ContentType)
	require.Equal(t, "Refund Policy", item.Title)
	require.True(t, item.Bidirectional)
}

func TestParseBidirectionalFlag(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`[{"bidirectional":true}]`, true},
		{`[{"bidirectional":"TRUE"}]`, true},
		{`[{"bidirectional":1}]`, true},
		{`[{"bidirectional":false}]`, false},
		{`[{"bidirectional":"no"}]`, false},
		{`[{}]`, false},
	}
	for _, tc := range cases {
		got, _ := parseBidirectional(tc.raw)
		require.Len(t, got, 1)
		require.Equal(t, tc.want, got[0].Bidirectional, tc.raw)
	}
}
