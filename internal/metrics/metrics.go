package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "naturespot_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})
)

// Translation pipeline
var (
	// TranslationDecisions counts how each request was resolved:
	// none, memory, cache, provider, mock
	TranslationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_translation_decisions_total",
		Help: "Translation requests by resolution path",
	}, []string{"decision"})

	TranslationCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_translation_cache_hits_total",
		Help: "Translation cache hits by layer (memory, store)",
	}, []string{"layer"})

	TranslationCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "naturespot_translation_cache_misses_total",
		Help: "Translation lookups that missed every cache layer",
	})

	TranslationCacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_translation_cache_errors_total",
		Help: "Persistent cache failures by operation",
	}, []string{"op"})

	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_translation_provider_requests_total",
		Help: "Provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_translation_provider_errors_total",
		Help: "Provider failures by provider and kind",
	}, []string{"provider", "kind"})

	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "naturespot_translation_provider_latency_seconds",
		Help:    "Latency of a single provider HTTP call",
		Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
	}, []string{"provider"})

	TranslationChunks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "naturespot_translation_chunks",
		Help:    "Number of chunks a text was split into for a chunked provider",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	CacheSweptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "naturespot_translation_cache_swept_total",
		Help: "Expired entries removed by the sweeper, by layer",
	}, []string{"layer"})

	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "naturespot_translation_cache_entries",
		Help: "Persistent translation cache rows by state (active, expired)",
	}, []string{"state"})
)
