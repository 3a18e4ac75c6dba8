package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"bristolgate/internal/config"
)

const (
	ServiceName    = "bristolgate-pipeline"
	ServiceVersion = "v1.0.0"
	MeterName      = "bristolgate"
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel initializes tracing and metrics per configuration.
// With telemetry disabled it returns providers whose fields are nil;
// callers must treat every field as optional.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	ctx := context.Background()
	providers := &OTelProviders{Logger: logger}

	if !cfg.Enabled {
		return providers, nil
	}

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	res, err := createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource() (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// A dedicated registry keeps the scrape handler scoped to
		// this provider instead of the process-global default.
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// MetricsServer exposes the Prometheus scrape endpoint while a run
// is active. Addr is the bound address, useful when the configured
// port was 0.
type MetricsServer struct {
	Addr string
	srv  *http.Server
}

// Shutdown stops the server. Safe on a nil receiver, so callers can
// defer it unconditionally.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// ServeMetrics mounts the Prometheus handler at /metrics on addr and
// starts serving in the background. It returns nil when metrics are
// disabled or addr is empty.
func (p *OTelProviders) ServeMetrics(addr string) (*MetricsServer, error) {
	if addr == "" || p.PrometheusHTTP == nil {
		return nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", p.PrometheusHTTP)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.Logger.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()

	p.Logger.Info("metrics endpoint listening", slog.String("addr", ln.Addr().String()))
	return &MetricsServer{Addr: ln.Addr().String(), srv: srv}, nil
}

// PipelineMetrics holds the run-level instruments the stages record.
type PipelineMetrics struct {
	FactsLoaded     metric.Int64Counter
	SeriesCreated   metric.Int64Counter
	SeriesSkipped   metric.Int64Counter
	FeaturesCreated metric.Int64Counter
	FeaturesSkipped metric.Int64Counter
	SymbolsFailed   metric.Int64Counter
	RegimeEpisodes  metric.Int64Counter
	StageDuration   metric.Float64Histogram
	StageErrors     metric.Int64Counter
	ActiveRuns      metric.Int64UpDownCounter
}

// CreatePipelineMetrics creates the pipeline-specific instruments.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	factsLoaded, err := meter.Int64Counter(
		"pipeline_facts_loaded_total",
		metric.WithDescription("Total observations read from staging sources"),
	)
	if err != nil {
		return nil, err
	}

	seriesCreated, err := meter.Int64Counter(
		"pipeline_series_created_total",
		metric.WithDescription("Total derived series added to the grid"),
	)
	if err != nil {
		return nil, err
	}

	seriesSkipped, err := meter.Int64Counter(
		"pipeline_series_skipped_total",
		metric.WithDescription("Total derived series skipped for missing components"),
	)
	if err != nil {
		return nil, err
	}

	featuresCreated, err := meter.Int64Counter(
		"pipeline_features_created_total",
		metric.WithDescription("Total feature columns generated"),
	)
	if err != nil {
		return nil, err
	}

	featuresSkipped, err := meter.Int64Counter(
		"pipeline_features_skipped_total",
		metric.WithDescription("Total feature columns emitted as null placeholders"),
	)
	if err != nil {
		return nil, err
	}

	symbolsFailed, err := meter.Int64Counter(
		"pipeline_symbols_failed_total",
		metric.WithDescription("Total symbols whose feature task failed"),
	)
	if err != nil {
		return nil, err
	}

	regimeEpisodes, err := meter.Int64Counter(
		"pipeline_regime_episodes_total",
		metric.WithDescription("Total regime episodes detected"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Stage execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"pipeline_stage_errors_total",
		metric.WithDescription("Total stage failures"),
	)
	if err != nil {
		return nil, err
	}

	activeRuns, err := meter.Int64UpDownCounter(
		"pipeline_active_runs",
		metric.WithDescription("Number of pipeline runs in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		FactsLoaded:     factsLoaded,
		SeriesCreated:   seriesCreated,
		SeriesSkipped:   seriesSkipped,
		FeaturesCreated: featuresCreated,
		FeaturesSkipped: featuresSkipped,
		SymbolsFailed:   symbolsFailed,
		RegimeEpisodes:  regimeEpisodes,
		StageDuration:   stageDuration,
		StageErrors:     stageErrors,
		ActiveRuns:      activeRuns,
	}, nil
}

// RecordStageMetrics records duration and outcome for one stage run.
func RecordStageMetrics(ctx context.Context, metrics *PipelineMetrics, runID, stageID string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
		attribute.String("stage.id", stageID),
	}

	status := "success"
	if err != nil {
		status = "failure"
		metrics.StageErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	metrics.StageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(append(attrs, attribute.String("status", status))...))
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
