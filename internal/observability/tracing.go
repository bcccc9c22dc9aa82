package observability

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewTracerProvider installs the global tracer provider. Spans are only
// exported when tracing is enabled and an OTLP endpoint is configured.
func NewTracerProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			semconv.ServiceName(cfg.Observability.ServiceName),
			semconv.ServiceVersion(cfg.AppVersion),
		)),
	}

	if cfg.Observability.TracingEnabled && cfg.Observability.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpointURL(cfg.Observability.OTLPEndpoint),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		log.Info("otlp trace exporter enabled", zap.String("endpoint", cfg.Observability.OTLPEndpoint))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return tp, nil
}
