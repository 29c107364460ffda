// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jllopis/careermentor/pkg/config"
)

// InstrumentationName names the tracer and meter used across the module.
const InstrumentationName = "github.com/jllopis/careermentor"

// Resource attribute keys describing how the dispatcher is configured.
const (
	AttrDeployProfile      = "mentor.deploy.profile"
	AttrDeployRecordDirect = "mentor.deploy.record_direct"
)

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(context.Context) error

// Config controls exporter selection and the resource every span and metric
// carries.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Exporter is one of "none", "stdout" or "otlp".
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool

	// SampleRatio is the fraction of new traces recorded. Child spans follow
	// their parent's decision.
	SampleRatio    float64
	MetricInterval time.Duration

	// Writer receives stdout exporter output. Nil means os.Stdout.
	Writer io.Writer

	// Attributes are added to the resource.
	Attributes []attribute.KeyValue
}

// FromSettings derives the telemetry setup from the loaded configuration.
// The resource records the backend and chaining strategy so traces from
// differently configured deployments can be told apart.
func FromSettings(cfg *config.Config, serviceName, version, profile string) Config {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLLMProvider, cfg.LLM.Provider),
		attribute.String(AttrHandoffChainMode, cfg.Handoff.ChainMode),
		attribute.Bool(AttrDeployRecordDirect, cfg.Handoff.RecordDirect),
	}
	if cfg.LLM.Model != "" {
		attrs = append(attrs, attribute.String(AttrLLMModel, cfg.LLM.Model))
	}
	if profile != "" {
		attrs = append(attrs, attribute.String(AttrDeployProfile, profile))
	}
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Exporter:       cfg.Telemetry.Exporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		MetricInterval: cfg.Telemetry.MetricInterval,
		Attributes:     attrs,
	}
}

// Setup installs global tracer and meter providers for cfg.Exporter. The
// "none" exporter leaves the global no-op providers in place.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if cfg.Exporter == "" || cfg.Exporter == "none" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	spanExp, metricExp, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(spanExp, trace.WithBatchTimeout(time.Second)),
		trace.WithResource(res),
		trace.WithSampler(sampler(cfg.SampleRatio)),
	)
	interval := cfg.MetricInterval
	if interval <= 0 {
		interval = time.Minute
	}
	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExp, metric.WithInterval(interval))),
		metric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := append([]attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}, cfg.Attributes...)
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

func newExporters(ctx context.Context, cfg Config) (trace.SpanExporter, metric.Exporter, error) {
	switch cfg.Exporter {
	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		spanExp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("stdout metric exporter: %w", err)
		}
		return spanExp, metricExp, nil
	case "otlp":
		if cfg.OTLPEndpoint == "" {
			return nil, nil, fmt.Errorf("otlp endpoint is required")
		}
		traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}
		spanExp, err := otlptracegrpc.New(ctx, traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		return spanExp, metricExp, nil
	default:
		return nil, nil, fmt.Errorf("unknown telemetry exporter: %s", cfg.Exporter)
	}
}

// sampler records every trace for ratios outside (0, 1).
func sampler(ratio float64) trace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(ratio))
}
