// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchEpisodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_episodes_total",
			Help: "Total number of search episodes by mode and status",
		},
		[]string{"mode", "status"},
	)

	SearchEpisodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "search_episode_duration_seconds",
			Help: "Duration of a full search episode in seconds",
		},
		[]string{"mode"},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_cache_hits_total",
			Help: "Total number of episode cache hits",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_cache_misses_total",
			Help: "Total number of episode cache misses",
		},
	)

	BackendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_backend_calls_total",
			Help: "Total number of retrieval backend calls by status",
		},
		[]string{"status"},
	)

	BackendCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "search_backend_call_duration_seconds",
			Help: "Duration of a retrieval backend call in seconds",
		},
	)

	EnrichmentFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_enrichment_fetches_total",
			Help: "Total number of secondary content fetches by status",
		},
		[]string{"status"},
	)
)
