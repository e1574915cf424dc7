// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_completed_total",
			Help: "Total number of assessments completed by type",
		},
		[]string{"assessment_type"},
	)

	AssessmentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_failed_total",
			Help: "Total number of assessments failed by type",
		},
		[]string{"assessment_type", "error_code"},
	)

	AssessmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assessment_duration_seconds",
			Help: "Duration of assessment pipeline execution in seconds",
		},
		[]string{"assessment_type"},
	)

	ResultCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Result cache hits by assessment type",
		},
		[]string{"assessment_type"},
	)

	ResultCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Result cache misses by assessment type",
		},
		[]string{"assessment_type"},
	)

	ModelCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_cache_hits_total",
			Help: "Model loader memoization hits by artifact key",
		},
		[]string{"artifact_key"},
	)

	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_loads_total",
			Help: "Model artifact loads from the backing store by artifact key",
		},
		[]string{"artifact_key"},
	)
)
