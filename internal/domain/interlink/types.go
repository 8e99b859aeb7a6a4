package interlink

// ContentType identifies the corpus an item belongs to. IDs are only unique within a type.
type ContentType string

const (
	// TypeQuestion is a forum question.
	TypeQuestion ContentType = "question"
	// TypeAnswer is a forum answer.
	TypeAnswer ContentType = "answer"
	// TypeMainPage is an editorial page of the main site.
	TypeMainPage ContentType = "main_page"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeQuestion, TypeAnswer, TypeMainPage:
		return true
	default:
		return false
	}
}

// ContentRef addresses a single content item.
type ContentRef struct {
	Type ContentType `json:"type"`
	ID   int64       `json:"id"`
}

// Content is the interlinkable projection of a stored question, answer or page.
type Content struct {
	ID      int64       `json:"id"`
	Type    ContentType `json:"type"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
}

// Ref returns the address of c.
func (c Content) Ref() ContentRef {
	return ContentRef{Type: c.Type, ID: c.ID}
}

// Suggestion recommends linking AnchorText in the source to the content item ContentID.
type Suggestion struct {
	ContentID           int64       `json:"contentId" validate:"gt=0"`
	ContentType         ContentType `json:"contentType" validate:"content_type"`
	Title               string      `json:"title"`
	RelevanceScore      float64     `json:"relevanceScore" validate:"gte=0,lte=100"`
	AnchorText          string      `json:"anchorText" validate:"required"`
	ContextRelevance    string      `json:"contextRelevance"`
	SemanticSimilarity  float64     `json:"semanticSimilarity" validate:"gte=0,lte=1"`
	UserIntentAlignment float64     `json:"userIntentAlignment" validate:"gte=0,lte=1"`
	SEOImpact           float64     `json:"seoImpact" validate:"gte=0,lte=1"`
	Preview             string      `json:"preview"`
}

// Ref returns the address of the suggested target.
func (s Suggestion) Ref() ContentRef {
	return ContentRef{Type: s.ContentType, ID: s.ContentID}
}

// BidirectionalSuggestion is a cross-corpus link. ContentID and ContentType
// always mirror the target.
type BidirectionalSuggestion struct {
	Suggestion
	SourceID      int64       `json:"sourceId" validate:"gt=0"`
	SourceType    ContentType `json:"sourceType" validate:"content_type"`
	SourceTitle   string      `json:"sourceTitle"`
	TargetID      int64       `json:"targetId" validate:"gt=0"`
	TargetType    ContentType `json:"targetType" validate:"content_type"`
	TargetTitle   string      `json:"targetTitle"`
	Bidirectional bool        `json:"bidirectional"`
}

// SourceRef returns the address of the linking item.
func (b BidirectionalSuggestion) SourceRef() ContentRef {
	return ContentRef{Type: b.SourceType, ID: b.SourceID}
}

// TargetRef returns the address of the linked item.
func (b BidirectionalSuggestion) TargetRef() ContentRef {
	return ContentRef{Type: b.TargetType, ID: b.TargetID}
}

// SuggestRequest asks for links from one source to a pool of candidates.
type SuggestRequest struct {
	SourceContent string
	SourceTitle   string
	SourceType    ContentType
	// SourceID is optional; when set, the source itself is never suggested.
	SourceID int64
	Targets  []Content
	Limit    int
}

// BidirectionalRequest asks for links across the forum and the main site.
type BidirectionalRequest struct {
	ForumContent    []Content
	MainSiteContent []Content
	MaxPerItem      int
}

// Question is an existing forum question used by the legacy question linker.
type Question struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// QuestionSuggestion is the legacy result shape.
type QuestionSuggestion struct {
	QuestionID     int64   `json:"questionId"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevanceScore"`
	AnchorText     string  `json:"anchorText"`
}
