package interlink

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Relevance thresholds per path.
const (
	PrimaryThreshold       = 75
	BidirectionalThreshold = 75
	LegacyThreshold        = 50
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		return ContentType(fl.Field().String()).Valid()
	})
}

// rejection names why a suggestion was dropped; empty means admissible.
type rejection string

const (
	rejectStructure     rejection = "invalid structure"
	rejectAnchorMissing rejection = "anchor text not found verbatim in source"
	rejectThreshold     rejection = "relevance below threshold"
	rejectUnknownTarget rejection = "target not among candidates"
	rejectSamePool      rejection = "source and target in the same corpus"
)

// checkSuggestion applies the admissibility rules for a single-corpus suggestion.
func checkSuggestion(s Suggestion, sourceContent string, threshold float64) rejection {
	if err := validate.Struct(s); err != nil {
		return rejectStructure
	}
	if !strings.Contains(sourceContent, s.AnchorText) {
		return rejectAnchorMissing
	}
	if s.RelevanceScore < threshold {
		return rejectThreshold
	}
	return ""
}

// filterSuggestions keeps admissible suggestions that point at a known
// candidate and fills a missing title or preview from it.
func filterSuggestions(items []Suggestion, sourceContent string, threshold float64, candidates map[ContentRef]Content, logger *slog.Logger) []Suggestion {
	kept := make([]Suggestion, 0, len(items))
	for _, item := range items {
		reason := checkSuggestion(item, sourceContent, threshold)
		var target Content
		if reason == "" {
			var ok bool
			target, ok = candidates[ContentRef{Type: item.ContentType, ID: item.ContentID}]
			if !ok {
				reason = rejectUnknownTarget
			}
		}
		if reason != "" {
			logger.Debug("suggestion rejected", "reason", string(reason), "contentId", item.ContentID, "contentType", item.ContentType, "anchorText", item.AnchorText, "relevanceScore", item.RelevanceScore)
			continue
		}
		if strings.TrimSpace(item.Title) == "" {
			item.Title = target.Title
		}
		if strings.TrimSpace(item.Preview) == "" {
			item.Preview = Excerpt(target.Content, DefaultExcerptLength)
		}
		kept = append(kept, item)
	}
	return kept
}

type pools struct {
	forum    map[ContentRef]Content
	mainSite map[ContentRef]Content
}

func newPools(forum, mainSite []Content) pools {
	return pools{forum: indexContent(forum), mainSite: indexContent(mainSite)}
}

// resolve finds ref and reports which pool it belongs to.
func (p pools) resolve(ref ContentRef) (Content, bool, bool) {
	if item, ok := p.forum[ref]; ok {
		return item, true, true
	}
	if item, ok := p.mainSite[ref]; ok {
		return item, false, true
	}
	return Content{}, false, false
}

// checkBidirectional applies the same anchor invariant as the single-corpus
// path, against the content of the link source.
func checkBidirectional(s BidirectionalSuggestion, p pools) (BidirectionalSuggestion, rejection) {
	if err := validate.Struct(s); err != nil {
		return s, rejectStructure
	}
	src, srcForum, ok := p.resolve(s.SourceRef())
	if !ok {
		return s, rejectUnknownTarget
	}
	dst, dstForum, ok := p.resolve(s.TargetRef())
	if !ok {
		return s, rejectUnknownTarget
	}
	if srcForum == dstForum {
		return s, rejectSamePool
	}
	if !strings.Contains(src.Content, s.AnchorText) {
		return s, rejectAnchorMissing
	}
	if s.RelevanceScore < BidirectionalThreshold {
		return s, rejectThreshold
	}
	if strings.TrimSpace(s.SourceTitle) == "" {
		s.SourceTitle = src.Title
	}
	if strings.TrimSpace(s.TargetTitle) == "" {
		s.TargetTitle = dst.Title
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = s.TargetTitle
	}
	return s, ""
}
