// Package metrics records validation, import and export outcomes with
// OpenTelemetry.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// ExporterType selects where metrics are sent.
type ExporterType string

const (
	ExporterNone     ExporterType = "none"
	ExporterStdout   ExporterType = "stdout"
	ExporterOTLPHTTP ExporterType = "otlp-http"
)

// ParseExporterType validates a -metrics flag value.
func ParseExporterType(s string) (ExporterType, error) {
	switch ExporterType(s) {
	case "", ExporterNone:
		return ExporterNone, nil
	case ExporterStdout, ExporterOTLPHTTP:
		return ExporterType(s), nil
	default:
		return ExporterNone, fmt.Errorf("unknown metrics exporter %q", s)
	}
}

type Config struct {
	ServiceName    string
	ServiceVersion string
	Exporter       ExporterType
	// OTLPEndpoint is host:port for the OTLP HTTP exporter.
	OTLPEndpoint string
	OTLPInsecure bool
	// Reader overrides the exporter. Used by tests with a ManualReader.
	Reader sdkmetric.Reader
}

func DefaultConfig() Config {
	return Config{ServiceName: "departure-monitor", Exporter: ExporterNone}
}

// Metrics holds the instruments. All Record methods are safe on a nil
// receiver.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	validations      metric.Int64Counter
	validationIssues metric.Int64Counter
	imports          metric.Int64Counter
	importDuration   metric.Float64Histogram
	exports          metric.Int64Counter
	exportBytes      metric.Int64Histogram
	stopGauge        metric.Int64ObservableGauge

	mu            sync.Mutex
	registrations []metric.Registration
}

// New builds a MeterProvider for cfg and registers the instruments.
func New(ctx context.Context, cfg Config) (*Metrics, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultConfig().ServiceName
	}

	var opts []sdkmetric.Option
	switch {
	case cfg.Reader != nil:
		opts = append(opts, sdkmetric.WithReader(cfg.Reader))
	case cfg.Exporter == ExporterNone || cfg.Exporter == "":
	default:
		exporter, err := createExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)
	m := &Metrics{provider: provider, meter: provider.Meter(cfg.ServiceName)}
	if err := m.registerInstruments(); err != nil {
		return nil, fmt.Errorf("failed to register metric instruments: %w", err)
	}
	return m, nil
}

// Noop returns Metrics backed by a provider without readers.
func Noop() *Metrics {
	m, err := New(context.Background(), DefaultConfig())
	if err != nil {
		return nil
	}
	return m
}

func createExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdoutmetric.New()
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Exporter)
	}
}

func createResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}

func (m *Metrics) registerInstruments() error {
	var err error

	m.validations, err = m.meter.Int64Counter("depmon.validations",
		metric.WithDescription("Validation runs by outcome"))
	if err != nil {
		return fmt.Errorf("failed to create validations counter: %w", err)
	}

	m.validationIssues, err = m.meter.Int64Counter("depmon.validation.issues",
		metric.WithDescription("Validation errors and warnings by code"))
	if err != nil {
		return fmt.Errorf("failed to create validation issues counter: %w", err)
	}

	m.imports, err = m.meter.Int64Counter("depmon.imports",
		metric.WithDescription("Import attempts by source and outcome"))
	if err != nil {
		return fmt.Errorf("failed to create imports counter: %w", err)
	}

	m.importDuration, err = m.meter.Float64Histogram("depmon.import.duration",
		metric.WithDescription("Import pipeline latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("failed to create import duration histogram: %w", err)
	}

	m.exports, err = m.meter.Int64Counter("depmon.exports",
		metric.WithDescription("Exports produced"))
	if err != nil {
		return fmt.Errorf("failed to create exports counter: %w", err)
	}

	m.exportBytes, err = m.meter.Int64Histogram("depmon.export.size",
		metric.WithDescription("Serialized export size"),
		metric.WithUnit("By"))
	if err != nil {
		return fmt.Errorf("failed to create export size histogram: %w", err)
	}

	m.stopGauge, err = m.meter.Int64ObservableGauge("depmon.config.stops",
		metric.WithDescription("Stops in the live configuration"))
	if err != nil {
		return fmt.Errorf("failed to create stop gauge: %w", err)
	}

	return nil
}

// RecordValidation counts one validation run and each of its issues.
func (m *Metrics) RecordValidation(ctx context.Context, source string, result models.ValidationResult) {
	if m == nil {
		return
	}
	m.validations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("valid", result.IsValid),
		attribute.Bool("compatible", result.IsCompatible),
	))
	for _, e := range result.Errors {
		m.validationIssues.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", "error"),
			attribute.String("code", string(e.Code)),
		))
	}
	for _, w := range result.Warnings {
		m.validationIssues.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", "warning"),
			attribute.String("code", string(w.Code)),
		))
	}
}

// RecordImport counts one import attempt. outcome is e.g. "accepted",
// "rejected" or "failed".
func (m *Metrics) RecordImport(ctx context.Context, source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	)
	m.imports.Add(ctx, 1, attrs)
	m.importDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

func (m *Metrics) RecordExport(ctx context.Context, bytes int) {
	if m == nil {
		return
	}
	m.exports.Add(ctx, 1)
	m.exportBytes.Record(ctx, int64(bytes))
}

// ObserveStopCount reports count() on every collection.
func (m *Metrics) ObserveStopCount(count func() int) error {
	if m == nil {
		return nil
	}
	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.stopGauge, int64(count()))
		return nil
	}, m.stopGauge)
	if err != nil {
		return fmt.Errorf("failed to register stop gauge callback: %w", err)
	}

	m.mu.Lock()
	m.registrations = append(m.registrations, reg)
	m.mu.Unlock()
	return nil
}

// Shutdown flushes pending metrics and releases callbacks.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, reg := range m.registrations {
		if err := reg.Unregister(); err != nil {
			return fmt.Errorf("failed to unregister callback: %w", err)
		}
	}
	m.registrations = nil
	return m.provider.Shutdown(ctx)
}
