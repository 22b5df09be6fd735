// Package middleware provides cross-cutting concerns for the scoring engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-persona/internal/ports"
)

// metricsNamespace prefixes every metric this package registers.
const metricsNamespace = "persona"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks submissions, computation latency and rescoring progress.
type PrometheusMetrics struct {
	submissions      *prometheus.CounterVec
	unmatchedAnswers *prometheus.CounterVec
	rescoreResults   *prometheus.CounterVec
	answersPerSubmit *prometheus.HistogramVec
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics and registers its metrics
// with reg. A nil reg registers with the default Prometheus registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// Domain metrics.
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "submissions_total",
				Help:      "Total number of stored submissions by theme and resulting type.",
			},
			[]string{"theme", "type"},
		),
		unmatchedAnswers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "unmatched_answers_total",
				Help:      "Answers skipped because their question code is unknown.",
			},
			[]string{"theme"},
		),
		rescoreResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rescore_results_total",
				Help:      "Results visited by rescoring passes, by outcome.",
			},
			[]string{"theme", "outcome"},
		),
		answersPerSubmit: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "answers_per_submission",
				Help:      "Number of answers carried by each scored submission.",
				Buckets:   prometheus.LinearBuckets(0, 10, 10),
			},
			[]string{"theme"},
		),

		// General execution metrics.
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of scoring operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "theme"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of other counted operations.",
			},
			[]string{"operation", "theme"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "system_state",
				Help:      "Current system state values.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation, themeLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	theme := themeLabel(labels)

	switch metric {
	case "submissions_total":
		pm.submissions.WithLabelValues(theme, labels["type"]).Add(value)
	case "unmatched_answers_total":
		pm.unmatchedAnswers.WithLabelValues(theme).Add(value)
	case "rescore_scanned_total":
		pm.rescoreResults.WithLabelValues(theme, "scanned").Add(value)
	case "rescore_updated_total":
		pm.rescoreResults.WithLabelValues(theme, "updated").Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, theme).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Unknown histograms fall back to the
// operation latency histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	theme := themeLabel(labels)
	switch metric {
	case "answers_per_submission":
		pm.answersPerSubmit.WithLabelValues(theme).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric, theme).Observe(value)
	}
}

func themeLabel(labels map[string]string) string {
	if theme := labels["theme"]; theme != "" {
		return theme
	}
	return "all"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
