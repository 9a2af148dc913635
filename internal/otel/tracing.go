// Package otel wires request tracing across the punch pipeline (identify
// -> verify -> upload -> transition) using the real OpenTelemetry SDK,
// exported over OTLP/HTTP (spec.md's supplemented tracing feature,
// modeled on the teacher's otel.Exporter and middleware.Trace but wired to
// the actual go.opentelemetry.io SDK instead of a hand-rolled exporter).
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerProvider wraps the SDK's tracer provider with the service resource
// attributes and a batching OTLP/HTTP exporter.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// Config holds the OTLP exporter endpoint and sampling rate.
type Config struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// NewTracerProvider builds a TracerProvider exporting spans over
// OTLP/HTTP. A zero-value Endpoint falls back to the exporter's default
// (localhost:4318), matching local-development defaults.
func NewTracerProvider(ctx context.Context, serviceName string, cfg Config) (*TracerProvider, error) {
	opts := []otlptracehttp.Option{}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 {
		ratio = 1.0
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(ratio)),
	)
	otel.SetTracerProvider(provider)

	return &TracerProvider{provider: provider}, nil
}

// Shutdown flushes pending spans and releases the exporter, with a bounded
// timeout so process shutdown never hangs on a stalled collector.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}

// PunchPipelineTracer names the tracer used across the punch pipeline's
// stages.
const PunchPipelineTracer = "attendance-core/punch-pipeline"

// StartStage starts a child span for one punch-pipeline stage (normalize,
// identify, verify, upload, transition), tagged with the employee id once
// it's known.
func StartStage(ctx context.Context, stage string, empID int64) (context.Context, trace.Span) {
	tracer := otel.Tracer(PunchPipelineTracer)
	ctx, span := tracer.Start(ctx, stage)
	if empID != 0 {
		span.SetAttributes(attribute.Int64("attendance.emp_id", empID))
	}
	return ctx, span
}
