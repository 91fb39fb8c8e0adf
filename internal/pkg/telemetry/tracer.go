// Package telemetry wires structured logging and the OpenTelemetry SDK.
//
// Call SetupTracer once at the top of main(), defer the returned shutdown
// function, and every span created anywhere in the process is exported.
//
//	shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry.TracerConfig("basket-service"))
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc must be called before the process exits to flush any
// buffered spans and close the exporter connection cleanly.
type ShutdownFunc func(ctx context.Context) error

type TracerConfig struct {
	ServiceName string
	// Endpoint is the collector host:port. Empty disables export.
	Endpoint    string
	Environment string
	// SampleRatio in [0,1]; 1 samples every request.
	SampleRatio float64
}

// SetupTracer registers the global TracerProvider and W3C propagators.
//
// With an empty endpoint only the propagators are installed, spans stay
// non-recording and the returned shutdown is a no-op.
func SetupTracer(ctx context.Context, cfg TracerConfig) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	endpoint := stripScheme(cfg.Endpoint)
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to dial OTel Collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to create OTLP trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down TracerProvider: %w", err)
		}
		return conn.Close()
	}
	return shutdown, nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// stripScheme removes "http://" or "https://" so the raw host:port can be
// used directly with grpc.NewClient.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	for _, prefix := range []string{"http://", "https://"} {
		if rest, ok := strings.CutPrefix(endpoint, prefix); ok {
			return rest
		}
	}
	return endpoint
}
