package resource

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/crmarques/ddiconf/faults"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("normalizes_nested_payload", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"cidr":   json.Number("24"),
			"active": true,
			"ranges": []any{
				uint16(3),
				json.Number("1.5"),
			},
			"inheritance": map[string]any{
				"depth": int8(9),
			},
		}

		got, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}

		expected := map[string]any{
			"cidr":   int64(24),
			"active": true,
			"ranges": []any{
				int64(3),
				float64(1.5),
			},
			"inheritance": map[string]any{
				"depth": int64(9),
			},
		}

		if !deepEqual(got, expected) {
			t.Fatalf("expected %#v, got %#v", expected, got)
		}
	})

	t.Run("flattens_params_and_string_lists", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize(Params{
			"cidr":  24,
			"names": []string{"a", "b"},
		})
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}

		expected := map[string]any{"cidr": int64(24), "names": []any{"a", "b"}}
		if !deepEqual(got, expected) {
			t.Fatalf("expected %#v, got %#v", expected, got)
		}
	})

	t.Run("rejects_non_string_map_keys", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(map[int]string{1: "x"})
		assertValidationErrorNormalize(t, err)
	})

	t.Run("rejects_non_finite_float", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(math.Inf(1))
		assertValidationErrorNormalize(t, err)
	})

	t.Run("rejects_out_of_range_integer", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(uint64(math.MaxInt64) + 1)
		assertValidationErrorNormalize(t, err)
	})

	t.Run("rejects_unsupported_type", func(t *testing.T) {
		t.Parallel()

		type subnet struct {
			Address string
		}
		_, err := Normalize(subnet{Address: "10.0.0.0"})
		assertValidationErrorNormalize(t, err)
	})
}

func deepEqual(a any, b any) bool {
	encodedA, err := json.Marshal(a)
	if err != nil {
		return false
	}
	encodedB, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(encodedA) == string(encodedB)
}

func assertValidationErrorNormalize(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var typed *faults.TypedError
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Category != faults.ValidationError {
		t.Fatalf("expected %q category, got %q", faults.ValidationError, typed.Category)
	}
}
