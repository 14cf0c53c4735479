package resolver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/server/servertest"
)

var ipSpace = []descriptor.Target{{Collection: "ipam/ip_space", LookupField: "name"}}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	r := New(platform)

	id, found, err := r.Resolve(context.Background(), ipSpace, "missing")
	if err != nil {
		t.Fatalf("expected not found without error, got %v", err)
	}
	if found || id != "" {
		t.Fatalf("expected not found, got id=%q found=%t", id, found)
	}
}

func TestResolveMemoizesWithinCall(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	spaceID := platform.Seed("ipam/ip_space", map[string]any{"name": "lab"})
	r := New(platform)

	for range 3 {
		id, found, err := r.Resolve(context.Background(), ipSpace, "lab")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if !found || id != spaceID {
			t.Fatalf("expected %q, got id=%q found=%t", spaceID, id, found)
		}
	}

	if got := platform.CallCount(http.MethodGet, "/ipam/ip_space"); got != 1 {
		t.Fatalf("expected a single underlying lookup, got %d", got)
	}
	if r.Lookups() != 1 {
		t.Fatalf("expected lookup counter 1, got %d", r.Lookups())
	}
}

func TestResolveMemoizesNotFound(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	r := New(platform)

	_, _, _ = r.Resolve(context.Background(), ipSpace, "missing")
	_, _, _ = r.Resolve(context.Background(), ipSpace, "missing")

	if got := platform.CallCount(http.MethodGet, "/ipam/ip_space"); got != 1 {
		t.Fatalf("expected not-found outcome to be memoized, got %d lookups", got)
	}
}

func TestResolveFallbackTargets(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	groupID := platform.Seed("dhcp/ha_group", map[string]any{"name": "pair-1"})
	r := New(platform)

	id, found, err := r.Resolve(context.Background(), []descriptor.Target{
		{Collection: "dhcp/host", LookupField: "name"},
		{Collection: "dhcp/ha_group", LookupField: "name"},
	}, "pair-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !found || id != groupID {
		t.Fatalf("expected fallback target id %q, got %q found=%t", groupID, id, found)
	}
}

func TestResolveScope(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	platform.Seed("dhcp/option_code", map[string]any{"name": "routers", "option_space": "dhcp/option_space/a"})
	scopedID := platform.Seed("dhcp/option_code", map[string]any{"name": "routers", "option_space": "dhcp/option_space/b"})
	r := New(platform)

	id, found, err := r.Resolve(
		context.Background(),
		[]descriptor.Target{{Collection: "dhcp/option_code", LookupField: "name"}},
		"routers",
		filter.Eq("option_space", "dhcp/option_space/b"),
	)
	if err != nil || !found || id != scopedID {
		t.Fatalf("expected scoped id %q, got id=%q found=%t err=%v", scopedID, id, found, err)
	}
}

func TestResolveAmbiguity(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	firstID := platform.Seed("dns/view", map[string]any{"name": "default"})
	platform.Seed("dns/view", map[string]any{"name": "default"})
	views := []descriptor.Target{{Collection: "dns/view", LookupField: "name"}}

	id, found, err := New(platform).Resolve(context.Background(), views, "default")
	if err != nil || !found || id != firstID {
		t.Fatalf("expected first match %q under take-first, got id=%q err=%v", firstID, id, err)
	}

	_, _, err = New(platform, WithAmbiguity(descriptor.ErrorOnAmbiguous)).Resolve(context.Background(), views, "default")
	if !faults.IsCategory(err, faults.ReferenceResolutionError) || !errors.Is(err, ErrAmbiguousMatch) {
		t.Fatalf("expected ambiguous match error, got %v", err)
	}
}

func TestResolveLookupFailures(t *testing.T) {
	t.Parallel()

	t.Run("remote_error_names_reference", func(t *testing.T) {
		t.Parallel()

		platform := servertest.New()
		platform.Fail(http.MethodGet, "/ipam/ip_space", http.StatusInternalServerError, map[string]any{"error": "down"})

		_, _, err := New(platform).Resolve(context.Background(), ipSpace, "lab")
		if !faults.IsCategory(err, faults.ReferenceResolutionError) {
			t.Fatalf("expected reference resolution error, got %v", err)
		}
		if faults.StatusCode(err) != http.StatusInternalServerError {
			t.Fatalf("expected status to be preserved, got %d", faults.StatusCode(err))
		}
	})

	t.Run("auth_error_propagates", func(t *testing.T) {
		t.Parallel()

		platform := servertest.New()
		platform.Fail(http.MethodGet, "/ipam/ip_space", http.StatusUnauthorized, "denied")

		_, _, err := New(platform).Resolve(context.Background(), ipSpace, "lab")
		if !faults.IsCategory(err, faults.AuthError) {
			t.Fatalf("expected auth error, got %v", err)
		}
	})

	t.Run("errors_are_not_memoized", func(t *testing.T) {
		t.Parallel()

		platform := servertest.New()
		platform.Fail(http.MethodGet, "/ipam/ip_space", http.StatusBadGateway, nil)
		r := New(platform)

		_, _, _ = r.Resolve(context.Background(), ipSpace, "lab")
		_, _, _ = r.Resolve(context.Background(), ipSpace, "lab")
		if got := platform.CallCount(http.MethodGet, "/ipam/ip_space"); got != 2 {
			t.Fatalf("expected failed lookups to stay uncached, got %d lookups", got)
		}
	})
}

func TestRequire(t *testing.T) {
	t.Parallel()

	_, err := New(servertest.New()).Require(context.Background(), "space", ipSpace, "missing")
	if !faults.IsCategory(err, faults.ReferenceResolutionError) {
		t.Fatalf("expected reference resolution error, got %v", err)
	}
}
