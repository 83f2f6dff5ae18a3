// Package telemetry traces request handling onto the process log. The
// transport owns stdout, so spans surface as slog lines on stderr
// rather than through an exporter: one line when a span ends, carrying
// its duration and outcome.
package telemetry

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Provider owns a tracer provider wired to the log span processor.
type Provider struct {
	provider *sdktrace.TracerProvider
}

func NewProvider() *Provider {
	return &Provider{
		provider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&logSpanProcessor{})),
	}
}

func (p *Provider) Tracer(name string) trace.Tracer {
	return p.provider.Tracer(name)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

// Step runs fn inside a span and records its outcome on the span.
func Step(ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

// logSpanProcessor renders span lifecycle as log lines.
type logSpanProcessor struct{}

func (p *logSpanProcessor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	slog.Debug("Span started.", "span", span.Name())
}

func (p *logSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	duration := span.EndTime().Sub(span.StartTime()).Round(time.Microsecond)
	status := span.Status()
	if status.Code == codes.Error {
		slog.Warn("Span failed.", "span", span.Name(), "duration", duration, "error", status.Description)
		return
	}
	slog.Debug("Span completed.", "span", span.Name(), "duration", duration)
}

func (p *logSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *logSpanProcessor) ForceFlush(context.Context) error { return nil }
