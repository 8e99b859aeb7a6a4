package interlink

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLength is the rune budget for candidate excerpts in prompts.
const DefaultExcerptLength = 200

const ellipsis = "..."

// NewContent projects a stored record into the interlinkable shape. The body
// is kept verbatim because anchor text is matched against it.
func NewContent(id int64, typ ContentType, title, body string) Content {
	return Content{ID: id, Type: typ, Title: strings.TrimSpace(title), Content: body}
}

// Excerpt collapses whitespace and truncates text to limit runes, ellipsis included.
// Excerpts only ever feed prompts.
func Excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	if limit <= len(ellipsis) {
		return string([]rune(text)[:limit])
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit-len(ellipsis)])) + ellipsis
}

type candidate struct {
	ID      int64       `json:"id"`
	Type    ContentType `json:"type"`
	Title   string      `json:"title"`
	Excerpt string      `json:"excerpt"`
}

// candidatesFor projects targets into prompt candidates ordered by (type, id),
// dropping the source itself and duplicate addresses.
func candidatesFor(targets []Content, source ContentRef, excerptLen int) []candidate {
	seen := make(map[ContentRef]struct{}, len(targets))
	out := make([]candidate, 0, len(targets))
	for _, target := range sortedContent(targets) {
		ref := target.Ref()
		if source.ID > 0 && ref == source {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, candidate{
			ID:      target.ID,
			Type:    target.Type,
			Title:   strings.TrimSpace(target.Title),
			Excerpt: Excerpt(target.Content, excerptLen),
		})
	}
	return out
}

func sortedContent(items []Content) []Content {
	sorted := append([]Content(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type == sorted[j].Type {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Type < sorted[j].Type
	})
	return sorted
}

func indexContent(items []Content) map[ContentRef]Content {
	index := make(map[ContentRef]Content, len(items))
	for _, item := range items {
		if _, ok := index[item.Ref()]; !ok {
			index[item.Ref()] = item
		}
	}
	return index
}
