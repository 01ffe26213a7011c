package metrics

import "github.com/prometheus/client_golang/prometheus"

// scoreBuckets spans 0.001 to about 6.7e4; scores grow with the square of team size.
var scoreBuckets = prometheus.ExponentialBuckets(0.001, 4, 14)

// Engine Prometheus metrics.
var (
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teammaker",
			Name:      "generations_total",
			Help:      "Total number of partition generations",
		},
		[]string{"strategy", "status"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teammaker",
			Name:      "generation_duration_seconds",
			Help:      "Generate call duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"strategy"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teammaker",
			Name:      "searches_total",
			Help:      "Total number of best-of-N partition searches",
		},
		[]string{"strategy", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teammaker",
			Name:      "search_duration_seconds",
			Help:      "Search call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"strategy"},
	)

	SearchTrialsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "teammaker",
			Name:      "search_trials_total",
			Help:      "Total number of search trials executed",
		},
	)

	SearchBestScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "teammaker",
			Name:      "search_best_score",
			Help:      "Balance score of the partition returned by search",
			Buckets:   scoreBuckets,
		},
	)

	TableRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "teammaker",
			Name:      "table_rows",
			Help:      "Row count of uploaded tables",
			Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
		},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationsTotal)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchTrialsTotal)
	prometheus.MustRegister(SearchBestScore)
	prometheus.MustRegister(TableRows)
	engineMetricsRegistered = true
}

// Status returns the status label for an operation outcome.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
