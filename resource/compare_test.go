package resource

import (
	"encoding/json"
	"testing"
)

func TestContains(t *testing.T) {
	t.Parallel()

	observed := map[string]any{
		"id":      "ipam/subnet/1",
		"address": "10.0.0.0",
		"cidr":    json.Number("24"),
		"comment": "lab",
		"tags":    map[string]any{"env": "prod", "owner": "net"},
		"dhcp_options": []any{
			map[string]any{"option_code": "dhcp/option_code/3", "option_value": "10.0.0.1", "type": "option", "group": nil},
		},
	}

	testCases := []struct {
		name    string
		desired map[string]any
		want    bool
	}{
		{name: "subset_matches", desired: map[string]any{"cidr": 24, "comment": "lab"}, want: true},
		{name: "nested_map_equal", desired: map[string]any{"tags": map[string]any{"env": "prod", "owner": "net"}}, want: true},
		{name: "nested_map_shrunk", desired: map[string]any{"tags": map[string]any{"env": "prod"}}, want: false},
		{name: "nested_map_cleared", desired: map[string]any{"tags": map[string]any{}}, want: false},
		{name: "nested_map_grown", desired: map[string]any{"tags": map[string]any{"env": "prod", "owner": "net", "site": "east"}}, want: false},
		{name: "missing_empty_map", desired: map[string]any{"labels": map[string]any{}}, want: true},
		{name: "scalar_mismatch", desired: map[string]any{"comment": "other"}, want: false},
		{name: "int_float_equivalence", desired: map[string]any{"cidr": 24.0}, want: true},
		{name: "missing_empty_default", desired: map[string]any{"name": ""}, want: true},
		{name: "missing_non_empty", desired: map[string]any{"name": "x"}, want: false},
		{
			name: "list_element_equal",
			desired: map[string]any{"dhcp_options": []any{
				map[string]any{"option_code": "dhcp/option_code/3", "option_value": "10.0.0.1", "type": "option"},
			}},
			want: true,
		},
		{
			name: "list_element_missing_field",
			desired: map[string]any{"dhcp_options": []any{
				map[string]any{"option_code": "dhcp/option_code/3", "option_value": "10.0.0.1"},
			}},
			want: false,
		},
		{name: "list_length_mismatch", desired: map[string]any{"dhcp_options": []any{}}, want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := Contains(observed, testCase.desired); got != testCase.want {
				t.Fatalf("Contains() = %t, want %t", got, testCase.want)
			}
		})
	}
}

func TestResultsAndResult(t *testing.T) {
	t.Parallel()

	body := map[string]any{"results": []any{
		map[string]any{"id": "dns/view/1", "name": "default"},
		"not-an-object",
	}}
	results := Results(body)
	if len(results) != 1 || ID(results[0]) != "dns/view/1" {
		t.Fatalf("unexpected results %#v", results)
	}

	created := Result(map[string]any{"result": map[string]any{"id": "dns/view/2"}})
	if object, ok := created.(map[string]any); !ok || ID(object) != "dns/view/2" {
		t.Fatalf("unexpected result %#v", created)
	}
	if raw := Result("plain"); raw != "plain" {
		t.Fatalf("expected non-envelope body to pass through, got %#v", raw)
	}
}

func TestParamsString(t *testing.T) {
	t.Parallel()

	params := Params{"name": "  lab ", "cidr": 24, "tags": []any{}, "empty": nil}
	if value, ok := params.String("name"); !ok || value != "lab" {
		t.Fatalf("expected trimmed name, got %q %t", value, ok)
	}
	if value, ok := params.String("cidr"); !ok || value != "24" {
		t.Fatalf("expected numeric text, got %q %t", value, ok)
	}
	if _, ok := params.String("tags"); ok {
		t.Fatalf("expected composite value to be rejected")
	}
	if params.Has("empty") {
		t.Fatalf("nil parameters must count as absent")
	}
}
