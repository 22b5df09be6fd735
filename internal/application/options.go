package application

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ahrav/go-persona/internal/ports"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/ahrav/go-persona/internal/application"

// observability bundles the logging, metrics and tracing hooks shared by the
// Scorer and the Rescorer.
type observability struct {
	logger  *zap.Logger
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

func defaultObservability() observability {
	return observability{
		logger:  zap.NewNop(),
		metrics: ports.NopMetrics{},
		tracer:  otel.Tracer(tracerName),
	}
}

// Option configures a Scorer or Rescorer.
type Option func(*observability)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *observability) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. A nil collector is ignored.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(o *observability) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer overrides the tracer obtained from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *observability) {
		if t != nil {
			o.tracer = t
		}
	}
}

func applyOptions(opts []Option) observability {
	o := defaultObservability()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
