package debugctx

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPrintfRequiresEnabledWriter(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	ctx := WithWriter(context.Background(), &buffer)
	Printf(ctx, "hidden %d", 1)
	if buffer.Len() != 0 {
		t.Fatalf("expected no output when debug is disabled, got %q", buffer.String())
	}

	ctx = WithEnabled(ctx, true)
	Printf(ctx, "visible %d", 2)
	if got := buffer.String(); got != "debug: visible 2\n" {
		t.Fatalf("unexpected debug output %q", got)
	}
}

func TestLoggerWritesStructuredLines(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	ctx := WithEnabled(WithWriter(context.Background(), &buffer), true)

	Logger(ctx).WithName("orchestrator").Info("lookup", "resource_type", "ipam_subnet")

	output := buffer.String()
	if !strings.HasPrefix(output, "debug: ") {
		t.Fatalf("expected debug prefix, got %q", output)
	}
	if !strings.Contains(output, `"resource_type"="ipam_subnet"`) {
		t.Fatalf("expected key/value pair in output, got %q", output)
	}
}

func TestLoggerDiscardsWhenDisabled(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	ctx := WithWriter(context.Background(), &buffer)
	Logger(ctx).Info("ignored")
	if buffer.Len() != 0 {
		t.Fatalf("expected discarded output, got %q", buffer.String())
	}
}
