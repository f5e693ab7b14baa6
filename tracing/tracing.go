// Package tracing wires OpenTelemetry into the MediaWiki client. Spans wrap
// every API round trip and every MCP tool call; outgoing requests carry the
// W3C trace context so a wiki behind a tracing proxy can join the trace.
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "mediawiki-api-client"

// Config holds tracing settings, read from the standard OTEL_ variables
type Config struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"mediawiki-api-client"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	Environment    string `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	Enabled        bool   `env:"OTEL_ENABLED"`

	// OTLPEndpoint selects the OTLP exporter and implies Enabled; without
	// it spans are printed to stdout
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// LoadConfig reads the tracing configuration from the environment
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse tracing environment: %w", err)
	}
	if cfg.OTLPEndpoint != "" {
		cfg.Enabled = true
	}
	return cfg, nil
}

// Setup installs the global tracer provider and returns its shutdown
// function. A disabled config installs nothing and returns a no-op.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.OTLPEndpoint != "" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func newSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the client's tracer
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span under ctx
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// StartClientSpan starts a client-kind span for one outgoing API call
func StartClientSpan(ctx context.Context, action string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "wiki.api."+action, trace.WithSpanKind(trace.SpanKindClient))
}

// InjectHeaders writes the trace context of ctx into header
func InjectHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// AddToolAttributes tags an MCP tool span
func AddToolAttributes(span trace.Span, toolName, category string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.category", category),
	)
}

// AddWikiAttributes adds the API action and, when known, the page title
func AddWikiAttributes(span trace.Span, action, page string) {
	span.SetAttributes(attribute.String("wiki.api.action", action))
	if page != "" {
		span.SetAttributes(attribute.String("wiki.page.title", page))
	}
}

// AddSessionAttributes tags a span with the wiki site and session id
func AddSessionAttributes(span trace.Span, site, sessionID string) {
	span.SetAttributes(
		attribute.String("wiki.site", site),
		attribute.String("wiki.session.id", sessionID),
	)
}

// RecordError marks the span failed when err is non-nil
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
