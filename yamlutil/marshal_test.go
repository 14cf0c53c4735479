package yamlutil

import "testing"

func TestMarshalUsesTwoSpaceIndent(t *testing.T) {
	t.Parallel()

	encoded, err := Marshal(map[string]any{"platform": map[string]any{"base-url": "https://csp.example.com"}})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if got, want := string(encoded), "platform:\n  base-url: https://csp.example.com\n"; got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}
