package ranking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricRankingsTotal      = "counsellor_rankings_total"
	MetricRankingFailures    = "counsellor_ranking_failures_total"
	MetricRankingDuration    = "counsellor_ranking_duration_seconds"
	MetricClassifierOutcomes = "counsellor_ranking_classifier_outcomes_total"
)

// Classifier outcome label values.
const (
	OutcomeLabel   = "label"
	OutcomeNone    = "none"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics contains Prometheus collectors for ranking requests. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	rankings           *prometheus.CounterVec
	failures           *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	classifierOutcomes *prometheus.CounterVec
}

// NewMetrics creates the collectors. They are not registered; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		rankings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRankingsTotal,
			Help: "Total number of completed counsellor rankings by strategy",
		}, []string{"strategy"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRankingFailures,
			Help: "Total number of rankings that failed because the roster was unavailable",
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricRankingDuration,
			Help:    "Histogram of counsellor ranking duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"strategy"}),
		classifierOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricClassifierOutcomes,
			Help: "Free-text classification outcomes seen while ranking",
		}, []string{"outcome"}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.rankings,
		m.failures,
		m.duration,
		m.classifierOutcomes,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeRanking(strategy string, started time.Time) {
	if m == nil {
		return
	}
	m.rankings.WithLabelValues(strategy).Inc()
	m.duration.WithLabelValues(strategy).Observe(time.Since(started).Seconds())
}

func (m *Metrics) incFailure(strategy string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(strategy).Inc()
}

func (m *Metrics) incClassifier(outcome string) {
	if m == nil {
		return
	}
	m.classifierOutcomes.WithLabelValues(outcome).Inc()
}
