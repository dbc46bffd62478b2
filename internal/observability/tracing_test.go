package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/coordinate-engine/internal/logging"
)

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("COORD_TRACING_ENABLED", "true")
	t.Setenv("COORD_TRACING_EXPORTER", "OTLP")
	t.Setenv("COORD_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("COORD_OTLP_ENDPOINT", "collector:4317")

	cfg := TracingConfigFromEnv(DefaultTracingConfig())
	if !cfg.Enabled {
		t.Fatalf("expected tracing enabled")
	}
	if cfg.Exporter != "otlp" {
		t.Fatalf("exporter = %q, want otlp", cfg.Exporter)
	}
	if cfg.SampleRatio != 0.25 {
		t.Fatalf("sample ratio = %v, want 0.25", cfg.SampleRatio)
	}
	if cfg.Endpoint != "collector:4317" {
		t.Fatalf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.ServiceName != "coordinate-engine" {
		t.Fatalf("service name = %q", cfg.ServiceName)
	}
}

func TestTracingConfigFromEnvIgnoresBadRatio(t *testing.T) {
	t.Setenv("COORD_TRACING_SAMPLE_RATIO", "1.5")
	cfg := TracingConfigFromEnv(DefaultTracingConfig())
	if cfg.SampleRatio != 1 {
		t.Fatalf("sample ratio = %v, want default 1", cfg.SampleRatio)
	}
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), DefaultTracingConfig(), logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatalf("expected an invalid span context from the noop provider")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Writer = &buf

	shutdown, err := InitTracing(context.Background(), cfg, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "convert LLA to ECEF")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, logging.Noop())

	if !strings.Contains(buf.String(), "convert LLA to ECEF") {
		t.Fatalf("expected exported span in stdout output, got %q", buf.String())
	}
}

func TestInitTracingUnknownExporter(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Exporter = "zipkin"
	if _, err := InitTracing(context.Background(), cfg, logging.Noop()); err == nil {
		t.Fatalf("expected error for unsupported exporter")
	}
}
