package main

import (
	"testing"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/faults"
)

func TestNewDependencies(t *testing.T) {
	t.Parallel()

	deps := newDependencies()
	if deps.Contexts == nil || deps.NewClient == nil {
		t.Fatalf("expected context service and client factory, got %#v", deps)
	}
}

func TestNewPlatformClient(t *testing.T) {
	t.Parallel()

	client, err := newPlatformClient(config.Context{
		Name: "lab",
		Platform: config.Platform{
			BaseURL: "https://csp.example.com",
			Auth:    &config.Auth{APIKey: &config.TokenAuth{Token: "secret"}},
		},
	})
	if err != nil {
		t.Fatalf("newPlatformClient returned error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client")
	}

	_, err = newPlatformClient(config.Context{Name: "broken", Platform: config.Platform{BaseURL: "https://csp.example.com"}})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error for missing auth, got %v", err)
	}
}
