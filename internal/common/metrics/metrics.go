// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StrategySelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_strategy_selected_total",
			Help: "Total number of catalog queries per selected retrieval strategy",
		},
		[]string{"strategy"},
	)

	StrategyFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_strategy_fallbacks_total",
			Help: "Total number of strategy failures that degraded to another strategy",
		},
		[]string{"from", "to", "category"},
	)

	StrategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_strategy_duration_seconds",
			Help:    "Duration of strategy execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_id_cache_lookups_total",
			Help: "Id cache lookups by cache name and result (hit, miss, shared, error)",
		},
		[]string{"cache", "result"},
	)

	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_facet_documents_indexed_total",
			Help: "Facet documents written to the search index",
		},
		[]string{"result"},
	)
)
