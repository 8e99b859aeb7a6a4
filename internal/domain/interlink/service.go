package interlink

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/content-interlinker/internal/domain/gencache"
	"github.com/yanqian/content-interlinker/internal/domain/generation"
	apperrors "github.com/yanqian/content-interlinker/pkg/errors"
	"github.com/yanqian/content-interlinker/pkg/metrics"
)

// Cache namespaces owned by the interlinking service.
const (
	NamespaceInterlinks              = "interlinks"
	NamespaceInterlinksBidirectional = "interlinks_bidirectional"
	NamespaceInterlinksQuestions     = "interlinks_questions"
)

// Service produces internal link suggestions. Suggestion methods never fail:
// backend and parse problems are logged and yield an empty list.
type Service interface {
	Suggest(ctx context.Context, req SuggestRequest) []Suggestion
	SuggestBidirectional(ctx context.Context, req BidirectionalRequest) []BidirectionalSuggestion
	SuggestQuestions(ctx context.Context, content string, existing []Question) []QuestionSuggestion
	// SuggestForContent links a stored item to the rest of the repository.
	SuggestForContent(ctx context.Context, ref ContentRef, limit int) ([]Suggestion, error)
	// SuggestAcrossCorpora links stored forum items and main site pages.
	SuggestAcrossCorpora(ctx context.Context, maxPerItem int) ([]BidirectionalSuggestion, error)
}

// ContentRepository loads interlinkable content.
type ContentRepository interface {
	Get(ctx context.Context, ref ContentRef) (Content, bool, error)
	// List returns every item of the given types, all types when none are given.
	List(ctx context.Context, types ...ContentType) ([]Content, error)
}

type service struct {
	cfg       Config
	generator generation.Generator
	cache     *gencache.Cache
	repo      ContentRepository
	logger    *slog.Logger
}

// NewService wires up the interlinking domain. cache and repo may be nil.
func NewService(cfg Config, generator generation.Generator, cache *gencache.Cache, repo ContentRepository, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg.withDefaults(),
		generator: generator,
		cache:     cache,
		repo:      repo,
		logger:    logger.With("component", "interlink.service"),
	}
}

type targetKey struct {
	ID      int64       `json:"id"`
	Type    ContentType `json:"type"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
}

type suggestParams struct {
	Strategy      string      `json:"strategy"`
	SourceType    ContentType `json:"sourceType"`
	SourceID      int64       `json:"sourceId"`
	SourceTitle   string      `json:"sourceTitle"`
	SourceContent string      `json:"sourceContent"`
	Targets       []targetKey `json:"targets"`
	Limit         int         `json:"limit"`
	ExcerptLength int         `json:"excerptLength"`
}

type bidirectionalParams struct {
	Strategy   string      `json:"strategy"`
	Forum      []targetKey `json:"forum"`
	MainSite   []targetKey `json:"mainSite"`
	MaxPerItem int         `json:"maxPerItem"`
}

func targetKeys(items []Content) []targetKey {
	keys := make([]targetKey, 0, len(items))
	for _, item := range sortedContent(items) {
		keys = append(keys, targetKey{
			ID:      item.ID,
			Type:    item.Type,
			Title:   strings.TrimSpace(item.Title),
			Content: gencache.Digest(item.Content),
		})
	}
	return keys
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) []Suggestion {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	src := source{
		ref:     ContentRef{Type: req.SourceType, ID: req.SourceID},
		title:   req.SourceTitle,
		content: req.SourceContent,
	}
	out := s.suggest(ctx, NamespaceInterlinks, gencache.Long, StrategyWeighted, src, req.Targets, limit)
	metrics.SuggestionsReturned.WithLabelValues("suggest").Observe(float64(len(out)))
	return out
}

func (s *service) SuggestQuestions(ctx context.Context, content string, existing []Question) []QuestionSuggestion {
	targets := make([]Content, 0, len(existing))
	for _, q := range existing {
		targets = append(targets, NewContent(q.ID, TypeQuestion, q.Title, q.Content))
	}
	src := source{ref: ContentRef{Type: TypeQuestion}, content: content}
	suggestions := s.suggest(ctx, NamespaceInterlinksQuestions, gencache.Medium, StrategyRelevance, src, targets, s.cfg.LegacyLimit)

	out := make([]QuestionSuggestion, 0, len(suggestions))
	for _, item := range suggestions {
		out = append(out, QuestionSuggestion{
			QuestionID:     item.ContentID,
			Title:          item.Title,
			RelevanceScore: item.RelevanceScore,
			AnchorText:     item.AnchorText,
		})
	}
	metrics.SuggestionsReturned.WithLabelValues("questions").Observe(float64(len(out)))
	return out
}

func (s *service) suggest(ctx context.Context, namespace string, tier gencache.Tier, strategy RankingStrategy, src source, targets []Content, limit int) []Suggestion {
	if strings.TrimSpace(src.content) == "" {
		s.logger.Debug("empty source content, nothing to anchor", "namespace", namespace)
		return []Suggestion{}
	}
	candidates := candidatesFor(targets, src.ref, s.cfg.ExcerptLength)
	if len(candidates) == 0 {
		return []Suggestion{}
	}
	known := indexContent(targets)
	if src.ref.ID > 0 {
		delete(known, src.ref)
	}

	params := suggestParams{
		Strategy:      strategy.Name(),
		SourceType:    src.ref.Type,
		SourceID:      src.ref.ID,
		SourceTitle:   strings.TrimSpace(src.title),
		SourceContent: gencache.Digest(src.content),
		Targets:       targetKeys(targets),
		Limit:         limit,
		ExcerptLength: s.cfg.ExcerptLength,
	}
	out, err := gencache.Memoize(ctx, s.cache, namespace, params, tier, func(ctx context.Context) ([]Suggestion, error) {
		raw, err := s.generator.Generate(ctx, buildSuggestionRequest(src, candidates, limit, s.cfg))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeLLM, "generation failed", err)
		}
		parsed, shape := parseSuggestions(raw)
		if !shape.Recognized() {
			return nil, apperrors.Wrap(apperrors.CodeParse, "unrecognized response shape", nil)
		}
		kept := filterSuggestions(parsed, src.content, strategy.Threshold(), known, s.logger)
		s.logger.Debug("suggestions validated", "namespace", namespace, "shape", shape.String(), "proposed", len(parsed), "kept", len(kept))
		return strategy.Rank(kept, limit), nil
	})
	if err != nil {
		s.logger.Warn("interlinking suggestions unavailable", "namespace", namespace, "code", apperrors.CodeOf(err), "error", err)
		return []Suggestion{}
	}
	if out == nil {
		return []Suggestion{}
	}
	return out
}

func (s *service) SuggestBidirectional(ctx context.Context, req BidirectionalRequest) []BidirectionalSuggestion {
	maxPerItem := req.MaxPerItem
	if maxPerItem <= 0 {
		maxPerItem = s.cfg.BidirectionalMaxPerItem
	}
	out := s.suggestBidirectional(ctx, req.ForumContent, req.MainSiteContent, maxPerItem)
	metrics.SuggestionsReturned.WithLabelValues("bidirectional").Observe(float64(len(out)))
	return out
}

func (s *service) suggestBidirectional(ctx context.Context, forum, mainSite []Content, maxPerItem int) []BidirectionalSuggestion {
	if len(forum) == 0 || len(mainSite) == 0 {
		return []BidirectionalSuggestion{}
	}
	forum, mainSite = sortedContent(forum), sortedContent(mainSite)
	p := newPools(forum, mainSite)
	params := bidirectionalParams{
		Strategy:   StrategyBidirectional.Name(),
		Forum:      targetKeys(forum),
		MainSite:   targetKeys(mainSite),
		MaxPerItem: maxPerItem,
	}
	out, err := gencache.Memoize(ctx, s.cache, NamespaceInterlinksBidirectional, params, gencache.Long, func(ctx context.Context) ([]BidirectionalSuggestion, error) {
		raw, err := s.generator.Generate(ctx, buildBidirectionalRequest(forum, mainSite, maxPerItem, s.cfg))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeLLM, "generation failed", err)
		}
		parsed, shape := parseBidirectional(raw)
		if !shape.Recognized() {
			return nil, apperrors.Wrap(apperrors.CodeParse, "unrecognized response shape", nil)
		}
		kept := filterBidirectional(parsed, p, s.logger)
		return rankBidirectional(kept, StrategyBidirectional, maxPerItem), nil
	})
	if err != nil {
		s.logger.Warn("bidirectional suggestions unavailable", "code", apperrors.CodeOf(err), "error", err)
		return []BidirectionalSuggestion{}
	}
	if out == nil {
		return []BidirectionalSuggestion{}
	}
	return out
}

func (s *service) SuggestForContent(ctx context.Context, ref ContentRef, limit int) ([]Suggestion, error) {
	if !ref.Type.Valid() || ref.ID <= 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "content reference must have a known type and a positive id", nil)
	}
	if s.repo == nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "content repository not configured", nil)
	}
	item, found, err := s.repo.Get(ctx, ref)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "content lookup failed", err)
	}
	if !found {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "content not found", nil)
	}
	targets, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "content listing failed", err)
	}
	return s.Suggest(ctx, SuggestRequest{
		SourceContent: item.Content,
		SourceTitle:   item.Title,
		SourceType:    item.Type,
		SourceID:      item.ID,
		Targets:       targets,
		Limit:         limit,
	}), nil
}

func (s *service) SuggestAcrossCorpora(ctx context.Context, maxPerItem int) ([]BidirectionalSuggestion, error) {
	if s.repo == nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "content repository not configured", nil)
	}
	forum, err := s.repo.List(ctx, TypeQuestion, TypeAnswer)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "forum listing failed", err)
	}
	mainSite, err := s.repo.List(ctx, TypeMainPage)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "main site listing failed", err)
	}
	return s.SuggestBidirectional(ctx, BidirectionalRequest{
		ForumContent:    forum,
		MainSiteContent: mainSite,
		MaxPerItem:      maxPerItem,
	}), nil
}
