package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/internal/cli/testkit"
	"github.com/crmarques/ddiconf/server"
	"github.com/crmarques/ddiconf/server/servertest"
)

type fakeContexts struct {
	current config.Context
}

func (f fakeContexts) List(context.Context) ([]config.Context, error) {
	return []config.Context{f.current}, nil
}

func (f fakeContexts) GetCurrent(context.Context) (config.Context, error) {
	return f.current, nil
}

func (f fakeContexts) ResolveContext(_ context.Context, selection config.ContextSelection) (config.Context, error) {
	if selection.Name != "" && selection.Name != f.current.Name {
		return config.Context{}, faults.NewTypedError(faults.NotFoundError, "context "+selection.Name+" not found", nil)
	}
	return f.current, nil
}

func (f fakeContexts) Validate(context.Context, config.Context) error {
	return nil
}

func testDependencies(platform *servertest.Platform) Dependencies {
	return Dependencies{
		Contexts: fakeContexts{current: config.Context{
			Name: "lab",
			Platform: config.Platform{
				BaseURL: "https://csp.example.com",
				Auth:    &config.Auth{APIKey: &config.TokenAuth{Token: "secret-key"}},
			},
		}},
		NewClient: func(config.Context) (server.Client, error) {
			return platform, nil
		},
	}
}

func executeForTest(platform *servertest.Platform, stdin string, args ...string) (testkit.Streams, error) {
	return testkit.Execute(NewRootCommand(testDependencies(platform)), stdin, args...)
}

func decodeJSON[T any](t *testing.T, raw string) T {
	t.Helper()

	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("failed to decode output %q: %v", raw, err)
	}
	return decoded
}

func TestRequiredCommandPathsRegistered(t *testing.T) {
	t.Parallel()

	registered := map[string]bool{}
	for _, path := range testkit.CommandPaths(NewRootCommand(Dependencies{})) {
		registered[path] = true
	}

	for _, path := range []string{"apply", "update", "delete", "list", "types", "config", "config show", "config current", "version"} {
		if !registered[path] {
			t.Fatalf("expected command path %q to be registered, got %v", path, registered)
		}
	}
}

func TestApplyCommand(t *testing.T) {
	t.Parallel()

	platform := servertest.New()

	streams, err := executeForTest(platform, "", "apply", "ipam_ip_space", "--set", "name=lab", "--set", "comment=lab space", "-o", "json")
	if err != nil {
		t.Fatalf("apply returned error: %v (stderr %q)", err, streams.Stderr)
	}
	result := decodeJSON[map[string]any](t, streams.Stdout)
	if result["status"] != "applied" || result["action"] != "created" || result["changed"] != true {
		t.Fatalf("unexpected apply result: %v", result)
	}
	if got := len(platform.Objects("ipam/ip_space")); got != 1 {
		t.Fatalf("expected one ip space, got %d", got)
	}

	streams, err = executeForTest(platform, "", "apply", "ipam-ip-space", "--set", "name=lab", "--set", "comment=lab space", "-o", "json")
	if err != nil {
		t.Fatalf("second apply returned error: %v", err)
	}
	result = decodeJSON[map[string]any](t, streams.Stdout)
	if result["action"] != "unchanged" || result["changed"] != false {
		t.Fatalf("expected unchanged second apply, got %v", result)
	}
}

func TestApplyCommandBatchFromStdin(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	stdin := "- name: blue\n- name: green\n- name: red\n"

	streams, err := executeForTest(platform, stdin, "apply", "ipam_ip_space", "-f", "-", "--parallel", "2", "--set", "comment=batch", "-o", "json")
	if err != nil {
		t.Fatalf("batch apply returned error: %v", err)
	}

	results := decodeJSON[[]map[string]any](t, streams.Stdout)
	if len(results) != 3 {
		t.Fatalf("expected three results, got %d", len(results))
	}
	for _, result := range results {
		if result["action"] != "created" {
			t.Fatalf("unexpected batch result %v", result)
		}
	}

	names := map[string]bool{}
	for _, object := range platform.Objects("ipam/ip_space") {
		if object["comment"] != "batch" {
			t.Fatalf("expected --set to apply to every parameter set, got %v", object)
		}
		names[object["name"].(string)] = true
	}
	if diff := cmp.Diff(map[string]bool{"blue": true, "green": true, "red": true}, names); diff != "" {
		t.Fatalf("unexpected created names (-want +got):\n%s", diff)
	}
}

func TestApplyCommandRejectsInvalidParallel(t *testing.T) {
	t.Parallel()

	_, err := executeForTest(servertest.New(), "", "apply", "ipam_ip_space", "--set", "name=lab", "--parallel", "0")
	if ExitCodeForError(err) != 2 {
		t.Fatalf("expected validation exit code, got %d (%v)", ExitCodeForError(err), err)
	}
}

func TestUpdateCommandMissingResource(t *testing.T) {
	t.Parallel()

	streams, err := executeForTest(servertest.New(), "", "update", "dns_view", "--set", "name=ghost", "-o", "json")
	if err == nil {
		t.Fatal("expected update of a missing view to fail")
	}
	if got := ExitCodeForError(err); got != 3 {
		t.Fatalf("expected not found exit code 3, got %d", got)
	}

	result := decodeJSON[map[string]any](t, streams.Stdout)
	failure, _ := result["failure"].(map[string]any)
	if result["status"] != "failed" || failure["category"] != string(faults.NotFoundError) {
		t.Fatalf("unexpected failure output %v", result)
	}
	input, _ := failure["input"].(map[string]any)
	if input["name"] != "ghost" {
		t.Fatalf("expected failure to echo the input, got %v", failure)
	}
}

func TestDeleteCommand(t *testing.T) {
	t.Parallel()

	t.Run("requires_confirmation", func(t *testing.T) {
		t.Parallel()

		platform := servertest.New()
		platform.Seed("dns/view", map[string]any{"name": "internal"})

		_, err := executeForTest(platform, "", "delete", "dns_view", "--set", "name=internal")
		if ExitCodeForError(err) != 2 {
			t.Fatalf("expected validation failure, got %v", err)
		}
		if len(platform.Objects("dns/view")) != 1 {
			t.Fatal("expected view to survive an unconfirmed delete")
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		t.Parallel()

		platform := servertest.New()
		platform.Seed("dns/view", map[string]any{"name": "internal"})

		streams, err := executeForTest(platform, "", "delete", "dns_view", "--set", "name=internal", "-y", "-o", "json")
		if err != nil {
			t.Fatalf("delete returned error: %v", err)
		}
		result := decodeJSON[map[string]any](t, streams.Stdout)
		if result["action"] != "deleted" {
			t.Fatalf("unexpected delete result %v", result)
		}
		if len(platform.Objects("dns/view")) != 0 {
			t.Fatal("expected view to be deleted")
		}
	})
}

func TestListCommandWithJQ(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	platform.Seed("ipam/ip_space", map[string]any{"name": "west", "tags": map[string]any{"env": "prod"}})
	platform.Seed("ipam/ip_space", map[string]any{"name": "east", "tags": map[string]any{"env": "prod"}})
	platform.Seed("ipam/ip_space", map[string]any{"name": "lab", "tags": map[string]any{"env": "dev"}})

	streams, err := executeForTest(platform, "", "list", "ipam_ip_space", "--tag-filter", "env=prod", "--jq", "[.[].name] | sort", "-o", "json")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}

	result := decodeJSON[map[string]any](t, streams.Stdout)
	if diff := cmp.Diff([]any{"east", "west"}, result["payload"]); diff != "" {
		t.Fatalf("unexpected jq payload (-want +got):\n%s", diff)
	}
}

func TestListCommandRejectsInvalidJQ(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	_, err := executeForTest(platform, "", "list", "ipam_ip_space", "--jq", "[.[", "-o", "json")
	if ExitCodeForError(err) != 2 {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(platform.Calls()) != 0 {
		t.Fatalf("expected no platform calls for an invalid expression, got %d", len(platform.Calls()))
	}
}

func TestUnknownResourceType(t *testing.T) {
	t.Parallel()

	_, err := executeForTest(servertest.New(), "", "apply", "ipam_nothing", "--set", "name=x")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ddiconf types") {
		t.Fatalf("expected hint to list types, got %v", err)
	}
}

func TestUnknownContext(t *testing.T) {
	t.Parallel()

	_, err := executeForTest(servertest.New(), "", "apply", "dns_view", "--set", "name=x", "--context", "prod")
	if got := ExitCodeForError(err); got != 3 {
		t.Fatalf("expected not found exit code, got %d (%v)", got, err)
	}
}

func TestTypesCommand(t *testing.T) {
	t.Parallel()

	streams, err := executeForTest(servertest.New(), "", "types", "-o", "json")
	if err != nil {
		t.Fatalf("types returned error: %v", err)
	}
	items := decodeJSON[[]map[string]any](t, streams.Stdout)

	found := false
	for _, item := range items {
		if item["type"] == "ipam_subnet" {
			found = item["collection"] == "ipam/subnet" && item["allocation"] == "next_available_subnet"
		}
	}
	if !found {
		t.Fatalf("expected ipam_subnet with its allocation in %v", items)
	}

	streams, err = executeForTest(servertest.New(), "", "types", "-o", "text")
	if err != nil {
		t.Fatalf("types text returned error: %v", err)
	}
	if !strings.Contains(streams.Stdout, "dns_record_a") || !strings.Contains(streams.Stdout, "dns/record") {
		t.Fatalf("unexpected text output %q", streams.Stdout)
	}
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	t.Run("current", func(t *testing.T) {
		t.Parallel()

		streams, err := executeForTest(servertest.New(), "", "config", "current")
		if err != nil {
			t.Fatalf("config current returned error: %v", err)
		}
		if streams.Stdout != "lab\n" {
			t.Fatalf("unexpected current context %q", streams.Stdout)
		}
	})

	t.Run("show_redacts_credentials", func(t *testing.T) {
		t.Parallel()

		streams, err := executeForTest(servertest.New(), "", "config", "show")
		if err != nil {
			t.Fatalf("config show returned error: %v", err)
		}
		if strings.Contains(streams.Stdout, "secret-key") {
			t.Fatalf("expected token to be redacted, got %q", streams.Stdout)
		}
		if !strings.Contains(streams.Stdout, "base-url: https://csp.example.com") || !strings.Contains(streams.Stdout, "redacted") {
			t.Fatalf("unexpected config show output %q", streams.Stdout)
		}
	})

	t.Run("show_rejects_json", func(t *testing.T) {
		t.Parallel()

		_, err := executeForTest(servertest.New(), "", "config", "show", "-o", "json")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	streams, err := executeForTest(servertest.New(), "", "version", "-o", "json")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	value := decodeJSON[map[string]string](t, streams.Stdout)
	if value["version"] == "" || value["commit"] == "" {
		t.Fatalf("unexpected version output %v", value)
	}
}

func TestRunEmitsStatusAndMetrics(t *testing.T) {
	t.Parallel()

	platform := servertest.New()
	metricsPath := filepath.Join(t.TempDir(), "ddiconf.prom")
	args := []string{"apply", "dns_view", "--set", "name=internal", "--metrics-file", metricsPath}

	root := NewRootCommand(testDependencies(platform))
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	if err := run(root, args); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if stderr.String() != "[OK] command executed successfully.\n" {
		t.Fatalf("unexpected status %q", stderr.String())
	}

	exported, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}
	if !strings.Contains(string(exported), "ddiconf_reconcile_total") {
		t.Fatalf("expected reconcile counter in metrics file, got %q", exported)
	}
}

func TestRunReportsFailureStatus(t *testing.T) {
	t.Parallel()

	args := []string{"update", "dns_view", "--set", "name=ghost"}
	root := NewRootCommand(testDependencies(servertest.New()))
	stderr := &bytes.Buffer{}
	root.SetOut(&bytes.Buffer{})
	root.SetErr(stderr)
	root.SetArgs(args)

	err := run(root, args)
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if !strings.HasPrefix(stderr.String(), "[ERROR] command execution failed: ") {
		t.Fatalf("unexpected status %q", stderr.String())
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "untyped", err: errors.New("boom"), want: 1},
		{name: "validation", err: faults.NewTypedError(faults.ValidationError, "x", nil), want: 2},
		{name: "not_found", err: faults.NewTypedError(faults.NotFoundError, "x", nil), want: 3},
		{name: "auth", err: faults.NewTypedError(faults.AuthError, "x", nil), want: 4},
		{name: "conflict", err: faults.NewTypedError(faults.ConflictError, "x", nil), want: 5},
		{name: "transport", err: faults.NewTypedError(faults.TransportError, "x", nil), want: 6},
		{name: "remote", err: faults.NewTypedError(faults.RemoteError, "x", nil), want: 7},
		{name: "reference_resolution", err: faults.NewTypedError(faults.ReferenceResolutionError, "x", nil), want: 8},
		{name: "internal", err: faults.NewTypedError(faults.InternalError, "x", nil), want: 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := ExitCodeForError(testCase.err); got != testCase.want {
				t.Fatalf("ExitCodeForError() = %d, want %d", got, testCase.want)
			}
		})
	}
}
