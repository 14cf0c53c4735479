package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := NewTypedError(ValidationError, "invalid input", nil)
	if !IsCategory(err, ValidationError) {
		t.Fatalf("expected validation category match")
	}
	if IsCategory(err, NotFoundError) {
		t.Fatalf("expected not-found category mismatch")
	}

	wrapped := errors.New("wrap: " + err.Error())
	if IsCategory(wrapped, ValidationError) {
		t.Fatalf("plain wrapped string error must not match typed category")
	}

	joined := errors.Join(err, errors.New("other"))
	if !IsCategory(joined, ValidationError) {
		t.Fatalf("expected category match through errors.Join")
	}
}

func TestRemoteTypedError(t *testing.T) {
	t.Parallel()

	body := map[string]any{"error": []any{"space exhausted"}}
	err := fmt.Errorf("allocate: %w", NewRemoteTypedError(RemoteError, "remote request failed with status 409", 409, body))

	if got := CategoryOf(err); got != RemoteError {
		t.Fatalf("expected RemoteError category, got %q", got)
	}
	if got := StatusCode(err); got != 409 {
		t.Fatalf("expected status 409, got %d", got)
	}
	decoded, ok := Body(err).(map[string]any)
	if !ok || decoded["error"] == nil {
		t.Fatalf("expected remote body to be preserved, got %#v", Body(err))
	}
}

func TestCategoryOfUntypedError(t *testing.T) {
	t.Parallel()

	if got := CategoryOf(errors.New("boom")); got != InternalError {
		t.Fatalf("expected InternalError for untyped error, got %q", got)
	}
	if got := StatusCode(errors.New("boom")); got != 0 {
		t.Fatalf("expected zero status for untyped error, got %d", got)
	}
}

func TestTypedErrorMessage(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("parent not found")
	err := NewTypedError(ReferenceResolutionError, `address block "10.0.0.0/16"`, sentinel)
	if err.Error() != `address block "10.0.0.0/16": parent not found` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to reach the wrapped sentinel")
	}
}
