package telemetry_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/telemetry"
)

func TestNewNopProvider(t *testing.T) {
	p := telemetry.NewNopProvider()

	if p.TracerProvider == nil {
		t.Fatal("TracerProvider is nil")
	}
	if p.MeterProvider == nil {
		t.Fatal("MeterProvider is nil")
	}
	if p.LoggerProvider == nil {
		t.Fatal("LoggerProvider is nil")
	}
	if p.Logger == nil {
		t.Fatal("Logger is nil")
	}
}

func TestNopProvider_Shutdown(t *testing.T) {
	p := telemetry.NewNopProvider()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestSetup_NoEndpointIsLocal(t *testing.T) {
	var buf bytes.Buffer
	p, err := telemetry.Setup(context.Background(), config.TelemetryConfig{ServiceName: "auctiond"}, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer p.Shutdown(context.Background())

	p.Logger.Info("hello", slog.String("auction_id", "a1"))
	if !strings.Contains(buf.String(), "auction_id=a1") {
		t.Errorf("log output = %q, want auction_id attr", buf.String())
	}
}

func TestLogWithTrace_NoSpan(t *testing.T) {
	logger := slog.Default()
	if got := telemetry.LogWithTrace(context.Background(), logger); got != logger {
		t.Error("LogWithTrace() without a span should return the same logger")
	}
}

func TestLogWithTrace_WithSpan(t *testing.T) {
	p := telemetry.NewNopProvider()
	ctx, span := p.TracerProvider.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	var buf bytes.Buffer
	telemetry.LogWithTrace(ctx, slog.New(slog.NewTextHandler(&buf, nil))).Info("bid")

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !strings.Contains(buf.String(), "trace_id="+sc.TraceID().String()) {
		t.Errorf("log output = %q, want trace_id %s", buf.String(), sc.TraceID())
	}
	if !strings.Contains(buf.String(), "span_id="+sc.SpanID().String()) {
		t.Errorf("log output = %q, want span_id %s", buf.String(), sc.SpanID())
	}
}
