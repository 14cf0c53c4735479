package server

import (
	"net/http"
	"testing"

	"github.com/crmarques/ddiconf/faults"
)

func TestCheckResponse(t *testing.T) {
	t.Parallel()

	t.Run("success_returns_body", func(t *testing.T) {
		t.Parallel()

		body, err := CheckResponse("list ipam/subnet", Response{StatusCode: http.StatusOK, Body: map[string]any{"results": []any{}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := body.(map[string]any); !ok {
			t.Fatalf("expected body to pass through, got %#v", body)
		}
	})

	t.Run("unauthorized_is_auth_error", func(t *testing.T) {
		t.Parallel()

		_, err := CheckResponse("list ipam/subnet", Response{StatusCode: http.StatusUnauthorized, Body: "denied"})
		if !faults.IsCategory(err, faults.AuthError) {
			t.Fatalf("expected auth error, got %v", err)
		}
		if faults.StatusCode(err) != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", faults.StatusCode(err))
		}
	})

	t.Run("forbidden_is_remote_error", func(t *testing.T) {
		t.Parallel()

		_, err := CheckResponse("update", Response{StatusCode: http.StatusForbidden, Body: map[string]any{"error": "nope"}})
		if !faults.IsCategory(err, faults.RemoteError) {
			t.Fatalf("expected remote error, got %v", err)
		}
		body, ok := faults.Body(err).(map[string]any)
		if !ok || body["error"] != "nope" {
			t.Fatalf("expected body to be kept verbatim, got %#v", faults.Body(err))
		}
	})
}

func TestObjectPath(t *testing.T) {
	t.Parallel()

	if got := ObjectPath("ipam/subnet/abc"); got != "/ipam/subnet/abc" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := ObjectPath("/dns/view/1"); got != "/dns/view/1" {
		t.Fatalf("unexpected path %q", got)
	}
}
