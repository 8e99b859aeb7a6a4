package interlink

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yanqian/content-interlinker/internal/domain/generation"
)

const linkingPrinciples = "Only recommend a link when it adds real value for the reader, when it strengthens the topical hierarchy of the site for SEO, and never force a link that is irrelevant or merely tangential. " +
	"anchorText MUST be copied character for character from the source content (same casing and punctuation); never paraphrase it. " +
	"Return an empty list when nothing qualifies."

const suggestionSystemPrompt = "You are an SEO and content strategist for a community knowledge platform with forum questions, answers and main site pages. " +
	"Recommend internal links from the source content to the candidate items. " + linkingPrinciples +
	" Respond ONLY with valid minified JSON using this shape: " +
	`{"suggestions":[{"contentId":number,"contentType":"question"|"answer"|"main_page","title":string,"relevanceScore":number 0-100,"anchorText":string,"contextRelevance":string,"semanticSimilarity":number 0-1,"userIntentAlignment":number 0-1,"seoImpact":number 0-1,"preview":string}]}.`

const bidirectionalSystemPrompt = "You are an SEO and content strategist connecting a community forum with the editorial main site. " +
	"Propose internal links in both directions: from forum items to main site pages and from main site pages to forum items. Source and target of a link must come from different groups. " +
	linkingPrinciples + " anchorText must come from the content of the link source. " +
	"Set bidirectional to true when the reverse link is independently worth adding. " +
	"Respond ONLY with valid minified JSON using this shape: " +
	`{"suggestions":[{"sourceId":number,"sourceType":string,"sourceTitle":string,"targetId":number,"targetType":string,"targetTitle":string,"relevanceScore":number 0-100,"anchorText":string,"contextRelevance":string,"preview":string,"bidirectional":boolean}]}.`

type source struct {
	ref     ContentRef
	title   string
	content string
}

func buildSuggestionRequest(src source, candidates []candidate, limit int, cfg Config) generation.Request {
	payload := marshalOrEmpty(candidates)
	var b strings.Builder
	fmt.Fprintf(&b, "Source %s", displayType(src.ref.Type))
	if title := strings.TrimSpace(src.title); title != "" {
		fmt.Fprintf(&b, " titled %q", title)
	}
	fmt.Fprintf(&b, ":\n%s\n\n", src.content)
	fmt.Fprintf(&b, "Candidate items (JSON):\n%s\n\n", payload)
	fmt.Fprintf(&b, "Propose up to %d links ordered from most to least valuable.", proposalBudget(limit))

	return generation.Request{
		System: suggestionSystemPrompt,
		User:   b.String(),
		Options: generation.Options{
			Temperature:    cfg.Temperature,
			MaxTokens:      cfg.MaxTokens,
			ResponseFormat: generation.FormatJSONObject,
		},
	}
}

type poolItem struct {
	ID      int64       `json:"id"`
	Type    ContentType `json:"type"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
}

func buildBidirectionalRequest(forum, mainSite []Content, maxPerItem int, cfg Config) generation.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Forum items (JSON):\n%s\n\n", marshalOrEmpty(poolItems(forum)))
	fmt.Fprintf(&b, "Main site pages (JSON):\n%s\n\n", marshalOrEmpty(poolItems(mainSite)))
	fmt.Fprintf(&b, "Propose at most %d links per source item.", proposalBudget(maxPerItem))

	return generation.Request{
		System: bidirectionalSystemPrompt,
		User:   b.String(),
		Options: generation.Options{
			Temperature:    cfg.Temperature,
			MaxTokens:      cfg.MaxTokens,
			ResponseFormat: generation.FormatJSONObject,
		},
	}
}

// poolItems carries full bodies: every pool item may be a link source, and
// anchors have to be quoted from the real text.
func poolItems(items []Content) []poolItem {
	out := make([]poolItem, 0, len(items))
	for _, item := range sortedContent(items) {
		out = append(out, poolItem{ID: item.ID, Type: item.Type, Title: strings.TrimSpace(item.Title), Content: item.Content})
	}
	return out
}

// proposalBudget leaves headroom for suggestions dropped by validation.
func proposalBudget(limit int) int {
	if limit <= 0 {
		return defaultLimit * 2
	}
	return limit * 2
}

func displayType(t ContentType) string {
	switch t {
	case TypeMainPage:
		return "main site page"
	case TypeQuestion, TypeAnswer:
		return string(t)
	default:
		return "content"
	}
}

func marshalOrEmpty(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
