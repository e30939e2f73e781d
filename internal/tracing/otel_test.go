package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer("bot-dispatch-test", "node-1", &buf)
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "service.SubmitOrder")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"service.SubmitOrder", "bot-dispatch-test", "node-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("exported spans do not contain %q", want)
		}
	}
}
