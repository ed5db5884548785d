package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"csvhealth/internal/operations"
)

const (
	ServiceName    = "csvhealth"
	ServiceVersion = "1.0.0"
	MeterName      = "csvhealth"
)

// Observability holds the metric provider and its scrape handler
type Observability struct {
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeObservability sets up the OpenTelemetry meter provider with a
// Prometheus exporter. The returned handler serves the /metrics scrape
// endpoint.
func InitializeObservability(logger *slog.Logger) (*Observability, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	// A dedicated registry keeps repeated initialization (tests, restarts)
	// from colliding with the global default registerer.
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	obs := &Observability{
		MeterProvider:  mp,
		Meter:          mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion)),
		PrometheusHTTP: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:         logger,
	}

	logger.Info("metrics initialized", slog.String("exporter", "prometheus"))
	return obs, nil
}

// Shutdown flushes and stops the meter provider
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.MeterProvider == nil {
		return nil
	}
	if err := o.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	return nil
}

// PipelineMetrics counts cleansing runs and step executions. It satisfies
// the operations manager's Metrics interface.
type PipelineMetrics struct {
	RunsTotal    metric.Int64Counter
	RunDuration  metric.Float64Histogram
	StepsTotal   metric.Int64Counter
	StepDuration metric.Float64Histogram

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewPipelineMetrics registers the run and HTTP instruments on the meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"cleanse_runs_total",
		metric.WithDescription("Total number of cleansing runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"cleanse_run_duration_seconds",
		metric.WithDescription("Cleansing run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepsTotal, err := meter.Int64Counter(
		"cleanse_steps_total",
		metric.WithDescription("Total number of pipeline steps executed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"cleanse_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:           runsTotal,
		RunDuration:         runDuration,
		StepsTotal:          stepsTotal,
		StepDuration:        stepDuration,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
	}, nil
}

// RecordRun records the outcome and duration of one run
func (m *PipelineMetrics) RecordRun(ctx context.Context, status operations.RunStatus, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", string(status)))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordStep records the outcome and duration of one pipeline step
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, status operations.StepStatus, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.String("status", string(status)),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordHTTPRequest records one served HTTP request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
