package common

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/ddiconf/faults"
)

func TestValidateOutputFormatForCommandPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		path    string
		format  string
		wantErr bool
	}{
		{name: "structured_json", path: "ddiconf apply", format: OutputJSON},
		{name: "yaml_only_accepts_yaml", path: "ddiconf config show", format: OutputYAML},
		{name: "yaml_only_rejects_json", path: "ddiconf config show", format: OutputJSON, wantErr: true},
		{name: "text_only_accepts_auto", path: "ddiconf config current", format: OutputAuto},
		{name: "text_only_rejects_yaml", path: "ddiconf config current", format: OutputYAML, wantErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateOutputFormatForCommandPath(testCase.path, testCase.format)
			if testCase.wantErr != (err != nil) {
				t.Fatalf("ValidateOutputFormatForCommandPath() error = %v, wantErr %t", err, testCase.wantErr)
			}
			if err != nil && !faults.IsCategory(err, faults.ValidationError) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestResolveOutputFormatWithoutTerminal(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetOut(&bytes.Buffer{})

	if got := ResolveOutputFormat(command, &GlobalFlags{Output: OutputAuto}); got != OutputJSON {
		t.Fatalf("expected auto to resolve to json off a terminal, got %q", got)
	}
	if got := ResolveOutputFormat(command, &GlobalFlags{Output: OutputYAML}); got != OutputYAML {
		t.Fatalf("expected explicit format to win, got %q", got)
	}
}

func TestWriteOutputFormats(t *testing.T) {
	t.Parallel()

	value := map[string]any{"status": "applied"}
	testCases := []struct {
		format string
		want   string
	}{
		{format: OutputJSON, want: "{\n  \"status\": \"applied\"\n}\n"},
		{format: OutputYAML, want: "status: applied\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.format, func(t *testing.T) {
			t.Parallel()

			buffer := &bytes.Buffer{}
			command := &cobra.Command{}
			command.SetOut(buffer)

			if err := WriteOutput(command, testCase.format, value, nil); err != nil {
				t.Fatalf("WriteOutput returned error: %v", err)
			}
			if buffer.String() != testCase.want {
				t.Fatalf("WriteOutput() = %q, want %q", buffer.String(), testCase.want)
			}
		})
	}
}
