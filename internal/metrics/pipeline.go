package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pass outcomes
const (
	OutcomePublished  = "published"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
)

// Pipeline holds the search pipeline Prometheus metrics.
type Pipeline struct {
	QueriesTotal  prometheus.Counter
	PassesTotal   *prometheus.CounterVec
	PassDuration  prometheus.Histogram
	ResultsLast   prometheus.Gauge
	Observers     prometheus.Gauge
	PipelineReset prometheus.Counter
}

// NewPipeline creates the pipeline metrics and registers them with reg.
// A nil reg leaves the metrics unregistered, which is handy in tests.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	m := &Pipeline{
		QueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "namesearch",
			Name:      "queries_total",
			Help:      "Total number of query changes received",
		}),
		PassesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "namesearch",
				Name:      "filter_passes_total",
				Help:      "Filter passes by outcome",
			},
			[]string{"outcome"}, // published / superseded / failed
		),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "namesearch",
			Name:      "filter_pass_duration_seconds",
			Help:      "Duration of filter passes, including simulated latency",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 2.5, 5},
		}),
		ResultsLast: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "namesearch",
			Name:      "results_last",
			Help:      "Number of records in the last published result set",
		}),
		Observers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "namesearch",
			Name:      "observers",
			Help:      "Number of attached pipeline observers",
		}),
		PipelineReset: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "namesearch",
			Name:      "pipeline_resets_total",
			Help:      "Times the pipeline reset after the observer grace period expired",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.QueriesTotal,
			m.PassesTotal,
			m.PassDuration,
			m.ResultsLast,
			m.Observers,
			m.PipelineReset,
		)
	}
	return m
}
