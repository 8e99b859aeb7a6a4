package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/content-interlinker/internal/domain/interlink"
)

// Handler wires the HTTP transport to the interlinking service.
type Handler struct {
	svc    interlink.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc interlink.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

type contentPayload struct {
	ID      int64  `json:"id" binding:"required,gt=0"`
	Type    string `json:"type" binding:"required,oneof=question answer main_page"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p contentPayload) toContent() interlink.Content {
	return interlink.NewContent(p.ID, interlink.ContentType(p.Type), p.Title, p.Content)
}

func toContents(items []contentPayload) []interlink.Content {
	out := make([]interlink.Content, 0, len(items))
	for _, item := range items {
		out = append(out, item.toContent())
	}
	return out
}

type suggestPayload struct {
	SourceContent string           `json:"sourceContent" binding:"required"`
	SourceTitle   string           `json:"sourceTitle"`
	SourceType    string           `json:"sourceType" binding:"required,oneof=question answer main_page"`
	SourceID      int64            `json:"sourceId" binding:"gte=0"`
	Targets       []contentPayload `json:"targets" binding:"dive"`
	Limit         int              `json:"limit" binding:"gte=0,lte=20"`
}

type bidirectionalPayload struct {
	ForumContent    []contentPayload `json:"forumContent" binding:"dive"`
	MainSiteContent []contentPayload `json:"mainSiteContent" binding:"dive"`
	MaxPerItem      int              `json:"maxPerItem" binding:"gte=0,lte=10"`
}

type questionPayload struct {
	ID      int64  `json:"id" binding:"required,gt=0"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type questionsPayload struct {
	Content           string            `json:"content" binding:"required"`
	ExistingQuestions []questionPayload `json:"existingQuestions" binding:"dive"`
}

type suggestionsResponse[T any] struct {
	Suggestions []T `json:"suggestions"`
}

// Suggest links a source to the supplied targets.
func (h *Handler) Suggest(c *gin.Context) {
	var req suggestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	suggestions := h.svc.Suggest(c.Request.Context(), interlink.SuggestRequest{
		SourceContent: req.SourceContent,
		SourceTitle:   req.SourceTitle,
		SourceType:    interlink.ContentType(req.SourceType),
		SourceID:      req.SourceID,
		Targets:       toContents(req.Targets),
		Limit:         req.Limit,
	})
	c.JSON(http.StatusOK, suggestionsResponse[interlink.Suggestion]{Suggestions: suggestions})
}

// SuggestBidirectional links forum items and main site pages in both directions.
func (h *Handler) SuggestBidirectional(c *gin.Context) {
	var req bidirectionalPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	for _, item := range req.ForumContent {
		if interlink.ContentType(item.Type) == interlink.TypeMainPage {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "forumContent accepts questions and answers only", nil))
			return
		}
	}
	for _, item := range req.MainSiteContent {
		if interlink.ContentType(item.Type) != interlink.TypeMainPage {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "mainSiteContent accepts main site pages only", nil))
			return
		}
	}

	suggestions := h.svc.SuggestBidirectional(c.Request.Context(), interlink.BidirectionalRequest{
		ForumContent:    toContents(req.ForumContent),
		MainSiteContent: toContents(req.MainSiteContent),
		MaxPerItem:      req.MaxPerItem,
	})
	c.JSON(http.StatusOK, suggestionsResponse[interlink.BidirectionalSuggestion]{Suggestions: suggestions})
}

// SuggestQuestions serves the question-only linker.
func (h *Handler) SuggestQuestions(c *gin.Context) {
	var req questionsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	existing := make([]interlink.Question, 0, len(req.ExistingQuestions))
	for _, q := range req.ExistingQuestions {
		existing = append(existing, interlink.Question{ID: q.ID, Title: q.Title, Content: q.Content})
	}

	suggestions := h.svc.SuggestQuestions(c.Request.Context(), req.Content, existing)
	c.JSON(http.StatusOK, suggestionsResponse[interlink.QuestionSuggestion]{Suggestions: suggestions})
}

// SuggestForContent links a stored item to the rest of the stored content.
func (h *Handler) SuggestForContent(c *gin.Context) {
	ref := interlink.ContentRef{Type: interlink.ContentType(c.Param("type"))}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 || !ref.Type.Valid() {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "content type and positive id required", err))
		return
	}
	ref.ID = id
	limit, ok := queryInt(c, "limit", 0, 20)
	if !ok {
		return
	}

	suggestions, err := h.svc.SuggestForContent(c.Request.Context(), ref, limit)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, suggestionsResponse[interlink.Suggestion]{Suggestions: suggestions})
}

// SuggestAcrossCorpora links all stored forum items and main site pages.
func (h *Handler) SuggestAcrossCorpora(c *gin.Context) {
	maxPerItem, ok := queryInt(c, "maxPerItem", 0, 10)
	if !ok {
		return
	}
	suggestions, err := h.svc.SuggestAcrossCorpora(c.Request.Context(), maxPerItem)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, suggestionsResponse[interlink.BidirectionalSuggestion]{Suggestions: suggestions})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryInt reads an optional bounded integer query parameter. It aborts the
// request and returns false when the value is malformed.
func queryInt(c *gin.Context, name string, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		msg := name + " must be an integer between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", msg, err))
		return 0, false
	}
	return v, true
}
