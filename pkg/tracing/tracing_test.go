package tracing

import (
	"context"
	"testing"
	"time"
)

func TestInitTracer(t *testing.T) {
	ctx := context.Background()
	tp, tracer, err := InitTracer(ctx)
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}
	if tp == nil {
		t.Fatal("InitTracer() returned nil provider")
	}
	if tracer == nil {
		t.Fatal("InitTracer() returned nil tracer")
	}

	// No collector is listening, so flushing can fail; only bound the wait.
	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestInitTracerCustomEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:14317")

	ctx := context.Background()
	tp, _, err := InitTracer(ctx)
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}
