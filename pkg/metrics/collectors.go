package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// CacheRequests counts generation cache lookups per namespace and result.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gencache_requests_total",
		Help: "Generation cache lookups partitioned by namespace and result.",
	}, []string{"namespace", "result"})

	// CacheSharedCalls counts callers that joined an in-flight computation instead of starting one.
	CacheSharedCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gencache_shared_calls_total",
		Help: "Cache misses served by an already in-flight computation.",
	}, []string{"namespace"})

	// GenerationRequests counts calls to the text generation backend.
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Text generation backend calls partitioned by outcome.",
	}, []string{"status"})

	// GenerationTokens accumulates token usage reported by the backend.
	GenerationTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_tokens_total",
		Help: "Tokens consumed by the generation backend.",
	}, []string{"kind"})

	// SuggestionsReturned observes result sizes per interlinking operation.
	SuggestionsReturned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interlink_suggestions_returned",
		Help:    "Number of suggestions returned per call.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	}, []string{"operation"})
)
