// Package tracing wires an OpenTelemetry tracer provider exporting spans
// over OTLP/gRPC, and provides the span helpers the pricing loop uses around
// rounds and job dispatch.
//
// It wires go.opentelemetry.io/otel, otel/sdk, otel/trace,
// otel/exporters/otlp/otlptrace, otlptracegrpc, and google.golang.org/grpc,
// wired here following the standard OTel SDK setup pattern (see DESIGN.md).
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Provider wraps an OTel TracerProvider and the pricing-subsystem tracer
// derived from it.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// NewProvider dials endpoint (an OTLP/gRPC collector address) and builds a
// Provider. Callers that don't want distributed tracing should use NewNoop
// instead of calling this with an unreachable endpoint.
func NewProvider(ctx context.Context, endpoint string) (*Provider, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("tracing: dial %s: %w", endpoint, err)
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(otlptracegrpc.WithGRPCConn(conn)))
	if err != nil {
		return nil, fmt.Errorf("tracing: build exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return &Provider{tp: tp, tracer: tp.Tracer("github.com/scipgcg/pricing")}, nil
}

// NewNoop builds a Provider backed by the OTel SDK with no exporter
// registered: spans are created and discarded. The demo CLI always uses it.
func NewNoop() *Provider {
	tp := sdktrace.NewTracerProvider()
	return &Provider{tp: tp, tracer: tp.Tracer("github.com/scipgcg/pricing")}
}

// Shutdown flushes and releases the underlying TracerProvider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// StartRound opens a span covering one full pricing round.
func (p *Provider) StartRound(ctx context.Context, round int) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "pricing.round", trace.WithAttributes(
		attribute.Int("pricing.round", round),
	))
}

// StartJob opens a span covering one PricingJob dispatch (one solver
// invocation against one block).
func (p *Provider) StartJob(ctx context.Context, block int, solverName string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "pricing.job", trace.WithAttributes(
		attribute.Int("pricing.block", block),
		attribute.String("pricing.solver", solverName),
	))
}

// SetGlobal installs p's TracerProvider as the process-wide default, mainly
// so libraries instrumented against otel.Tracer() (rather than an injected
// Provider) pick it up too.
func (p *Provider) SetGlobal() {
	otel.SetTracerProvider(p.tp)
}
