package ports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockMetricsCollector implements MetricsCollector interface
type mockMetricsCollector struct {
	latencies  []time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// newMockMetricsCollector creates a new mock metrics collector for testing.
func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		latencies:  []time.Duration{},
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(_ string, duration time.Duration, _ map[string]string) {
	m.latencies = append(m.latencies, duration)
}

func (m *mockMetricsCollector) RecordCounter(metric string, value float64, _ map[string]string) {
	m.counters[metric] += value
}

func (m *mockMetricsCollector) RecordGauge(metric string, value float64, _ map[string]string) {
	m.gauges[metric] = value
}

func (m *mockMetricsCollector) RecordHistogram(metric string, value float64, _ map[string]string) {
	m.histograms[metric] = append(m.histograms[metric], value)
}

func TestInterfaces_Implementation(t *testing.T) {
	var _ MetricsCollector = (*mockMetricsCollector)(nil)
	var _ MetricsCollector = NopMetrics{}
}

func TestMetricsCollector_Recording(t *testing.T) {
	metrics := newMockMetricsCollector()
	labels := map[string]string{"theme": "work"}

	metrics.RecordLatency("compute", 100*time.Millisecond, labels)
	assert.Len(t, metrics.latencies, 1, "RecordLatency() should record one duration")
	assert.Equal(t, 100*time.Millisecond, metrics.latencies[0], "RecordLatency() duration mismatch")

	metrics.RecordCounter("submissions_total", 1, labels)
	metrics.RecordCounter("submissions_total", 2, labels)
	assert.Equal(t, float64(3), metrics.counters["submissions_total"], "RecordCounter() sum mismatch")

	metrics.RecordGauge("question_cache_entries", 10, nil)
	metrics.RecordGauge("question_cache_entries", 5, nil)
	assert.Equal(t, float64(5), metrics.gauges["question_cache_entries"], "RecordGauge() value mismatch")

	metrics.RecordHistogram("answers_per_submission", 12, labels)
	metrics.RecordHistogram("answers_per_submission", 40, labels)
	assert.Len(t, metrics.histograms["answers_per_submission"], 2, "RecordHistogram() should record two values")
}

func TestNopMetrics_Discards(t *testing.T) {
	var m MetricsCollector = NopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordLatency("compute", time.Second, nil)
		m.RecordCounter("submissions_total", 1, nil)
		m.RecordGauge("question_cache_entries", 1, nil)
		m.RecordHistogram("answers_per_submission", 1, nil)
	})
}
