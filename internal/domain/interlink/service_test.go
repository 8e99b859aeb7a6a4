package interlink

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/content-interlinker/internal/domain/gencache"
	"github.com/yanqian/content-interlinker/internal/domain/generation"
	"github.com/yanqian/content-interlinker/internal/infra/gencachestore"
	apperrors "github.com/yanqian/content-interlinker/pkg/errors"
)

type stubGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	requests []generation.Request
}

func (s *stubGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubGenerator) lastRequest() generation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

type stubRepository struct {
	items []Content
	err   error
}

func (r stubRepository) Get(_ context.Context, ref ContentRef) (Content, bool, error) {
	if r.err != nil {
		return Content{}, false, r.err
	}
	for _, item := range r.items {
		if item.Ref() == ref {
			return item, true, nil
		}
	}
	return Content{}, false, nil
}

func (r stubRepository) List(_ context.Context, types ...ContentType) ([]Content, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []Content
	for _, item := range r.items {
		if len(types) == 0 {
			out = append(out, item)
			continue
		}
		for _, typ := range types {
			if item.Type == typ {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

type serviceFixture struct {
	svc   Service
	gen   *stubGenerator
	store *gencachestore.MemoryStore
	now   time.Time
}

func newFixture(t *testing.T, reply string, repo ContentRepository) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		gen: &stubGenerator{reply: reply},
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store = gencachestore.NewMemoryStore(gencachestore.WithClock(func() time.Time { return f.now }))
	cache := gencache.New(f.store, newTestLogger())
	f.svc = NewService(Config{}, f.gen, cache, repo, newTestLogger())
	return f
}

func refundRequest() SuggestRequest {
	return SuggestRequest{
		SourceContent: refundSource,
		SourceTitle:   "Can I get my money back?",
		SourceType:    TypeQuestion,
		Targets: []Content{
			{ID: 7, Type: TypeMainPage, Title: "Refund Policy", Content: "Refunds are issued within 14 days."},
			{ID: 8, Type: TypeMainPage, Title: "Shipping", Content: "Orders ship in two days."},
		},
	}
}

const refundReply = `{"suggestions":[
{"contentId":7,"contentType":"main_page","relevanceScore":88,"anchorText":"refund policy","semanticSimilarity":0.9,"userIntentAlignment":0.9,"seoImpact":0.7},
{"contentId":7,"contentType":"main_page","relevanceScore":92,"anchorText":"our refunds","semanticSimilarity":0.9,"userIntentAlignment":0.9,"seoImpact":0.7}
]}`

func TestSuggestRefundExample(t *testing.T) {
	f := newFixture(t, refundReply, nil)

	got := f.svc.Suggest(context.Background(), refundRequest())

	require.Len(t, got, 1)
	require.Equal(t, int64(7), got[0].ContentID)
	require.Equal(t, "refund policy", got[0].AnchorText)
	require.Equal(t, "Refund Policy", got[0].Title)

	req := f.gen.lastRequest()
	require.Equal(t, generation.FormatJSONObject, req.Options.ResponseFormat)
	require.Contains(t, req.User, refundSource)
	require.Contains(t, req.User, "Refund Policy")
	require.Contains(t, req.User, "Propose up to 6 links")
}

func TestSuggestAnchorsAlwaysInSource(t *testing.T) {
	f := newFixture(t, refundReply, nil)
	req := refundRequest()
	for _, item := range f.svc.Suggest(context.Background(), req) {
		require.True(t, strings.Contains(req.SourceContent, item.AnchorText))
		require.GreaterOrEqual(t, item.RelevanceScore, float64(PrimaryThreshold))
		require.True(t, item.ContentType.Valid())
	}
}

func TestSuggestCachesIdenticalCalls(t *testing.T) {
	f := newFixture(t, refundReply, nil)
	ctx := context.Background()

	first := f.svc.Suggest(ctx, refundRequest())
	second := f.svc.Suggest(ctx, refundRequest())

	require.Equal(t, 1, f.gen.callCount())
	require.Equal(t, first, second)
}

func TestSuggestTargetOrderDoesNotChangeCacheKey(t *testing.T) {
	f := newFixture(t, refundReply, nil)
	ctx := context.Background()
	req := refundRequest()
	f.svc.Suggest(ctx, req)

	req.Targets[0], req.Targets[1] = req.Targets[1], req.Targets[0]
	f.svc.Suggest(ctx, req)

	require.Equal(t, 1, f.gen.callCount())
}

func TestSuggestRecomputesAfterTTL(t *testing.T) {
	f := newFixture(t, refundReply, nil)
	ctx := context.Background()

	f.svc.Suggest(ctx, refundRequest())
	f.now = f.now.Add(gencache.Long.Duration() - time.Second)
	f.svc.Suggest(ctx, refundRequest())
	require.Equal(t, 1, f.gen.callCount())

	f.now = f.now.Add(time.Second)
	f.svc.Suggest(ctx, refundRequest())
	require.Equal(t, 2, f.gen.callCount())
}

func TestSuggestChangedSourceMisses(t *testing.T) {
	f := newFixture(t, refundReply, nil)
	ctx := context.Background()
	req := refundRequest()
	f.svc.Suggest(ctx, req)

	req.SourceContent += " Contact support for help."
	f.svc.Suggest(ctx, req)

	require.Equal(t, 2, f.gen.callCount())
}

func TestSuggestMalformedResponse(t *testing.T) {
	f := newFixture(t, "not json", nil)
	ctx := context.Background()

	got := f.svc.Suggest(ctx, refundRequest())
	require.NotNil(t, got)
	require.Empty(t, got)

	f.svc.Suggest(ctx, refundRequest())
	require.Equal(t, 2, f.gen.callCount())
}

func TestSuggestBackendFailure(t *testing.T) {
	f := newFixture(t, "", nil)
	f.gen.err = errors.New("upstream unavailable")

	got := f.svc.Suggest(context.Background(), refundRequest())

	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestSuggestEmptyValidResultIsCached(t *testing.T) {
	f := newFixture(t, `{"suggestions":[]}`, nil)
	ctx := context.Background()

	require.Empty(t, f.svc.Suggest(ctx, refundRequest()))
	require.Empty(t, f.svc.Suggest(ctx, refundRequest()))
	require.Equal(t, 1, f.gen.callCount())
}

func TestSuggestOrdersByCompositeAndLimits(t *testing.T) {
	source := "Billing, refunds, shipping and returns are covered here."
	reply := `[
{"contentId":1,"contentType":"question","relevanceScore":80,"anchorText":"refunds","semanticSimilarity":0.8,"userIntentAlignment":0.8,"seoImpact":0.5},
{"contentId":2,"contentType":"question","relevanceScore":85,"anchorText":"Billing","semanticSimilarity":0.8,"userIntentAlignment":0.8,"seoImpact":0.6},
{"contentId":3,"contentType":"question","relevanceScore":95,"anchorText":"shipping","semanticSimilarity":0,"userIntentAlignment":0,"seoImpact":0},
{"contentId":4,"contentType":"question","relevanceScore":76,"anchorText":"returns","semanticSimilarity":0.1,"userIntentAlignment":0.1,"seoImpact":0.1}
]`
	targets := []Content{
		{ID: 1, Type: TypeQuestion, Title: "Refunds", Content: "r"},
		{ID: 2, Type: TypeQuestion, Title: "Billing", Content: "b"},
		{ID: 3, Type: TypeQuestion, Title: "Shipping", Content: "s"},
		{ID: 4, Type: TypeQuestion, Title: "Returns", Content: "x"},
	}
	f := newFixture(t, reply, nil)

	got := f.svc.Suggest(context.Background(), SuggestRequest{SourceContent: source, SourceType: TypeAnswer, Targets: targets})

	require.Equal(t, []int64{2, 1, 3}, ids(got))

	limited := f.svc.Suggest(context.Background(), SuggestRequest{SourceContent: source, SourceType: TypeAnswer, Targets: targets, Limit: 1})
	require.Equal(t, []int64{2}, ids(limited))
}

func TestSuggestReturnsEachTargetOnce(t *testing.T) {
	source := "Our refund policy explains the process. Refunds take 14 days and shipping is free."
	reply := `{"suggestions":[
{"contentId":7,"contentType":"main_page","relevanceScore":90,"anchorText":"refund policy","semanticSimilarity":0.9,"userIntentAlignment":0.9,"seoImpact":0.8},
{"contentId":7,"contentType":"main_page","relevanceScore":88,"anchorText":"Refunds","semanticSimilarity":0.9,"userIntentAlignment":0.9,"seoImpact":0.8},
{"contentId":7,"contentType":"main_page","relevanceScore":86,"anchorText":"the process","semanticSimilarity":0.9,"userIntentAlignment":0.9,"seoImpact":0.8},
{"contentId":8,"contentType":"main_page","relevanceScore":80,"anchorText":"shipping","semanticSimilarity":0.5,"userIntentAlignment":0.5,"seoImpact":0.5}
]}`
	f := newFixture(t, reply, nil)
	req := refundRequest()
	req.SourceContent = source

	got := f.svc.Suggest(context.Background(), req)

	require.Equal(t, []int64{7, 8}, ids(got))
	require.Equal(t, "refund policy", got[0].AnchorText)
}

func TestSuggestExcludesSourceFromCandidates(t *testing.T) {
	reply := `{"suggestions":[{"contentId":7,"contentType":"main_page","relevanceScore":95,"anchorText":"refund policy"}]}`
	f := newFixture(t, reply, nil)
	req := refundRequest()
	req.SourceType = TypeMainPage
	req.SourceID = 7

	got := f.svc.Suggest(context.Background(), req)

	require.Empty(t, got)
	require.NotContains(t, f.gen.lastRequest().User, `"id":7,`)
}

func TestSuggestWithoutInputSkipsBackend(t *testing.T) {
	f := newFixture(t, refundReply, nil)
	ctx := context.Background()

	req := refundRequest()
	req.SourceContent = "   "
	require.Empty(t, f.svc.Suggest(ctx, req))

	req = refundRequest()
	req.Targets = nil
	require.Empty(t, f.svc.Suggest(ctx, req))

	require.Zero(t, f.gen.callCount())
}

func TestSuggestWithoutCache(t *testing.T) {
	gen := &stubGenerator{reply: refundReply}
	svc := NewService(Config{}, gen, nil, nil, newTestLogger())

	svc.Suggest(context.Background(), refundRequest())
	svc.Suggest(context.Background(), refundRequest())

	require.Equal(t, 2, gen.callCount())
}

func TestSuggestQuestionsLegacy(t *testing.T) {
	reply := `{"interlinkingSuggestions":[
{"id":1,"type":"question","title":"Refund timing","relevanceScore":60,"anchorText":"refund policy"},
{"id":2,"type":"question","relevanceScore":40,"anchorText":"the process"},
{"id":3,"type":"question","relevanceScore":90,"anchorText":"explains"}
]}`
	f := newFixture(t, reply, nil)
	existing := []Question{
		{ID: 1, Title: "When do refunds arrive?", Content: "timing"},
		{ID: 2, Title: "Process", Content: "steps"},
		{ID: 3, Title: "Policy explained", Content: "policy"},
	}

	got := f.svc.SuggestQuestions(context.Background(), refundSource, existing)

	require.Equal(t, []QuestionSuggestion{
		{QuestionID: 3, Title: "Policy explained", RelevanceScore: 90, AnchorText: "explains"},
		{QuestionID: 1, Title: "Refund timing", RelevanceScore: 60, AnchorText: "refund policy"},
	}, got)

	f.svc.SuggestQuestions(context.Background(), refundSource, existing)
	require.Equal(t, 1, f.gen.callCount())
}

func TestSuggestQuestionsMalformed(t *testing.T) {
	f := newFixture(t, "not json", nil)
	got := f.svc.SuggestQuestions(context.Background(), refundSource, []Question{{ID: 1, Title: "Q", Content: "c"}})
	require.NotNil(t, got)
	require.Empty(t, got)
}

const bidirectionalReply = `{"suggestions":[
{"sourceId":1,"sourceType":"question","targetId":10,"targetType":"main_page","relevanceScore":90,"anchorText":"refund policy"},
{"sourceId":10,"sourceType":"main_page","targetId":1,"targetType":"question","relevanceScore":80,"anchorText":"community question"},
{"sourceId":2,"sourceType":"answer","targetId":10,"targetType":"main_page","relevanceScore":95,"anchorText":"refund policy"}
]}`

func TestSuggestBidirectional(t *testing.T) {
	f := newFixture(t, bidirectionalReply, nil)
	req := BidirectionalRequest{ForumContent: forumPool, MainSiteContent: mainSitePool}

	got := f.svc.SuggestBidirectional(context.Background(), req)

	require.Len(t, got, 2)
	require.Equal(t, int64(10), got[0].TargetID)
	require.Equal(t, "Refund Policy", got[0].TargetTitle)
	require.True(t, got[0].Bidirectional)
	require.Equal(t, int64(1), got[1].TargetID)
	require.True(t, got[1].Bidirectional)

	f.svc.SuggestBidirectional(context.Background(), req)
	require.Equal(t, 1, f.gen.callCount())
}

func TestSuggestBidirectionalNeedsBothPools(t *testing.T) {
	f := newFixture(t, bidirectionalReply, nil)
	got := f.svc.SuggestBidirectional(context.Background(), BidirectionalRequest{ForumContent: forumPool})
	require.NotNil(t, got)
	require.Empty(t, got)
	require.Zero(t, f.gen.callCount())
}

func TestSuggestBidirectionalMalformed(t *testing.T) {
	f := newFixture(t, "```json\n{\"links\":[]}\n```", nil)
	got := f.svc.SuggestBidirectional(context.Background(), BidirectionalRequest{ForumContent: forumPool, MainSiteContent: mainSitePool})
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestSuggestForContent(t *testing.T) {
	repo := stubRepository{items: append(append([]Content{}, forumPool...), mainSitePool...)}
	reply := `{"suggestions":[{"contentId":10,"contentType":"main_page","relevanceScore":90,"anchorText":"refund policy","semanticSimilarity":0.9,"userIntentAlignment":0.9,"seoImpact":0.9}]}`
	f := newFixture(t, reply, repo)

	got, err := f.svc.SuggestForContent(context.Background(), ContentRef{Type: TypeQuestion, ID: 1}, 0)

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Refund Policy", got[0].Title)
	user := f.gen.lastRequest().User
	require.Contains(t, user, forumPool[0].Content)
	require.Contains(t, user, "Billing")
}

func TestSuggestForContentErrors(t *testing.T) {
	ctx := context.Background()
	repo := stubRepository{items: forumPool}

	f := newFixture(t, refundReply, repo)
	_, err := f.svc.SuggestForContent(ctx, ContentRef{Type: TypeMainPage, ID: 404}, 3)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.SuggestForContent(ctx, ContentRef{Type: "blog", ID: 1}, 3)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	broken := newFixture(t, refundReply, stubRepository{err: errors.New("connection refused")})
	_, err = broken.svc.SuggestForContent(ctx, ContentRef{Type: TypeQuestion, ID: 1}, 3)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))

	unconfigured := newFixture(t, refundReply, nil)
	_, err = unconfigured.svc.SuggestForContent(ctx, ContentRef{Type: TypeQuestion, ID: 1}, 3)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
}

func TestSuggestAcrossCorpora(t *testing.T) {
	repo := stubRepository{items: append(append([]Content{}, mainSitePool...), forumPool...)}
	f := newFixture(t, bidirectionalReply, repo)

	got, err := f.svc.SuggestAcrossCorpora(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Contains(t, f.gen.lastRequest().User, "Propose at most 2 links per source item.")
}
