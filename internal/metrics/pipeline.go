package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline and alerting metrics. Registered explicitly from the composition
// root (no init()) so tests can construct services without global side effects.
var (
	// QueryDuration tracks end-to-end pipeline latency per domain.
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "query_duration_seconds",
			Help:      "Query pipeline duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"domain"},
	)

	// StageFailuresTotal counts contained stage failures by stage and domain.
	StageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "stage_failures_total",
			Help:      "Contained pipeline stage failures",
		},
		[]string{"stage", "domain"},
	)

	// AlertsQueuedTotal counts alerts accepted onto the dispatch queue.
	AlertsQueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "alerts_queued_total",
			Help:      "Alerts enqueued for dispatch",
		},
	)

	// AlertsDroppedTotal counts alerts dropped because the queue was full.
	AlertsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "alerts_dropped_total",
			Help:      "Alerts dropped due to queue overflow",
		},
	)

	// AlertSubscribers tracks currently connected streaming subscribers.
	AlertSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gateway",
			Name:      "alert_subscribers",
			Help:      "Connected alert stream subscribers",
		},
	)

	// EmbeddingCacheTotal counts embedding cache lookups by result (hit/miss).
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// LLMRequestsTotal counts generation/insight calls by kind and outcome.
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "llm_requests_total",
			Help:      "LLM API requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// RegisterPipelineMetrics registers all pipeline collectors with the default registry.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		QueryDuration,
		StageFailuresTotal,
		AlertsQueuedTotal,
		AlertsDroppedTotal,
		AlertSubscribers,
		EmbeddingCacheTotal,
		LLMRequestsTotal,
	)
}
