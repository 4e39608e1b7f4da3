package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"discordbridge/config"
	"discordbridge/core/log"
)

// TracerName identifies spans created by the bridge
const TracerName = "discordbridge"

// ShutdownFunc flushes pending spans and stops the exporter
type ShutdownFunc func(ctx context.Context) error

// Setup installs the global tracer provider.
// When tracing is disabled a no-op provider is installed and the returned shutdown does nothing.
func Setup(ctx context.Context, cfg config.TracingConfig) (trace.TracerProvider, ShutdownFunc, error) {
	if !cfg.Enabled {
		provider := noop.NewTracerProvider()
		otel.SetTracerProvider(provider)
		return provider, func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(TracesURL(cfg.Endpoint)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := NewProvider(cfg.ServiceName, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Warn("⚠️ Tracing export failed", "error", err)
	}))

	log.Info("🔭 Tracing initialized", "service", cfg.ServiceName, "endpoint", TracesURL(cfg.Endpoint))
	return provider, provider.Shutdown, nil
}

// NewProvider builds an SDK tracer provider tagged with the service name
func NewProvider(serviceName string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	opts = append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

// TracesURL appends the OTLP traces path to a collector base URL
func TracesURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/v1/traces") {
		return endpoint
	}
	return endpoint + "/v1/traces"
}
