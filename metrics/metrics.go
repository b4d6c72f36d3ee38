package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts analyze calls by outcome.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chartai",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total number of chart analyses, labeled by result.",
	}, []string{"result"})

	// AnalysisDurationSeconds is end-to-end time per analyze call, including
	// the LLM round trip and the record write.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chartai",
		Subsystem: "analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time to run one chart analysis (LLM call + parse + persist).",
		// Multimodal inference dominates; keep buckets coarse and wide.
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	// AnalysesInFlight is 1 while an analysis is outstanding; the service
	// enforces single-flight so it never exceeds 1.
	AnalysesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chartai",
		Subsystem: "analyzer",
		Name:      "analyses_in_flight",
		Help:      "Current number of chart analyses in flight.",
	})

	// RecordsDeletedTotal counts explicit history deletions.
	RecordsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chartai",
		Subsystem: "analyzer",
		Name:      "records_deleted_total",
		Help:      "Total number of analysis records deleted by user action.",
	})
)

// Register registers analyzer metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalysisDurationSeconds,
			AnalysesInFlight,
			RecordsDeletedTotal,
		)
	})
}
