package monitoring

import (
	"context"
	"errors"
	"testing"
)

func TestStartReconcileSpan(t *testing.T) {
	t.Parallel()

	ctx, span := StartReconcileSpan(context.Background(), "create", "ipam_subnet")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if span == nil {
		t.Fatal("expected non-nil span")
	}
}

func TestRecordSpanError(t *testing.T) {
	t.Parallel()

	_, span := StartRequestSpan(context.Background(), "GET", "/ipam/subnet")
	defer span.End()

	RecordSpanError(span, nil)
	RecordSpanError(span, errors.New("boom"))
}
