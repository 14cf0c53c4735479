package testkit

import (
	"bytes"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

var executeMu sync.Mutex

// Streams holds the captured output of one command execution.
type Streams struct {
	Stdout string
	Stderr string
}

// Execute runs command with args and stdin, capturing both output streams.
// Executions are serialized because cobra mutates shared flag state.
func Execute(command *cobra.Command, stdin string, args ...string) (Streams, error) {
	executeMu.Lock()
	defer executeMu.Unlock()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	command.SetOut(stdout)
	command.SetErr(stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	err := command.Execute()
	return Streams{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// CommandPaths lists the space-joined paths of every visible subcommand.
func CommandPaths(command *cobra.Command) []string {
	var paths []string
	var walk func(*cobra.Command, string)
	walk = func(current *cobra.Command, prefix string) {
		for _, child := range current.Commands() {
			name := child.Name()
			if name == "help" || strings.HasPrefix(name, "__") {
				continue
			}
			path := strings.TrimSpace(prefix + " " + name)
			paths = append(paths, path)
			walk(child, path)
		}
	}
	walk(command, "")
	return paths
}
