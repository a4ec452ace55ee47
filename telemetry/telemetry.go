// Records Prometheus metrics and OpenTelemetry spans
// around conversions.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/benoitkugler/avdconv/convert"
)

const defaultTracerName = "avdconv"

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "avdconv").
	Namespace string

	// Buckets are the histogram buckets for conversion duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the name of the tracer, resolved from the
	// global provider (default: "avdconv").
	TracerName string
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) { c.TracerName = name }
}

func defaultConfig() Config {
	return Config{
		Namespace:  "avdconv",
		Buckets:    prometheus.DefBuckets,
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
	}
}

// Status label values.
const (
	StatusOK          = "ok"
	StatusDiagnostics = "diagnostics"
	StatusError       = "error"
)

// Telemetry holds the collectors. A nil *Telemetry is valid and
// records nothing.
type Telemetry struct {
	conversions *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tracer      trace.Tracer
}

// New registers the collectors. It panics if they are already
// registered on the chosen registry, as promauto does.
func New(opts ...Option) *Telemetry {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)
	return &Telemetry{
		conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "conversions_total",
			Help:      "Total number of conversions, by direction and outcome",
		}, []string{"direction", "status"}),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "diagnostics_total",
			Help:      "Total number of unsupported constructs reported",
		}, []string{"direction", "kind"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Conversion duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"direction"}),

		tracer: otel.Tracer(config.TracerName),
	}
}

// Observe runs `fn` inside a span named after `dir` and records its outcome.
func (t *Telemetry) Observe(ctx context.Context, dir convert.Direction, fn func(ctx context.Context) (convert.Result, error)) (convert.Result, error) {
	if t == nil {
		return fn(ctx)
	}
	ctx, span := t.tracer.Start(ctx, "convert."+dir.String(),
		trace.WithAttributes(attribute.String("avdconv.direction", dir.String())))
	defer span.End()

	start := time.Now()
	res, err := fn(ctx)
	t.duration.WithLabelValues(dir.String()).Observe(time.Since(start).Seconds())

	status := StatusOK
	switch {
	case err != nil:
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(res.Diagnostics) > 0:
		status = StatusDiagnostics
	}
	t.conversions.WithLabelValues(dir.String(), status).Inc()
	for _, d := range res.Diagnostics {
		t.diagnostics.WithLabelValues(dir.String(), string(d.Kind)).Inc()
	}
	span.SetAttributes(
		attribute.Int("avdconv.diagnostics", len(res.Diagnostics)),
		attribute.Int("avdconv.output_bytes", len(res.Output)),
	)
	return res, err
}
