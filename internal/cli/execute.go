package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/internal/cli/commandmeta"
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/monitoring"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type Dependencies struct {
	Contexts  config.ContextService
	NewClient common.ClientFactory
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		Contexts:  d.Contexts,
		NewClient: d.NewClient,
	}
}

func Execute(deps Dependencies) error {
	root := NewRootCommand(deps)
	return run(root, os.Args[1:])
}

func run(root *cobra.Command, args []string) error {
	command, err := root.ExecuteC()
	if metricsErr := writeMetricsFile(root); metricsErr != nil {
		err = errors.Join(err, metricsErr)
	}
	emitStatus := shouldEmitExecutionStatus(args, command)

	if err != nil {
		if emitStatus {
			writeExecutionErrorStatus(root.ErrOrStderr(), err, args)
		} else {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		}
		return err
	}
	if emitStatus {
		writeExecutionOKStatus(root.ErrOrStderr(), args)
	}
	return nil
}

func writeMetricsFile(root *cobra.Command) error {
	path, err := root.PersistentFlags().GetString("metrics-file")
	if err != nil || strings.TrimSpace(path) == "" {
		return nil
	}
	if err := monitoring.WriteTextfile(path); err != nil {
		return faults.NewTypedError(faults.InternalError, "failed to write metrics file", err)
	}
	return nil
}

func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		return 1
	}

	switch typedErr.Category {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError:
		return 3
	case faults.AuthError:
		return 4
	case faults.ConflictError:
		return 5
	case faults.TransportError:
		return 6
	case faults.RemoteError:
		return 7
	case faults.ReferenceResolutionError:
		return 8
	default:
		return 1
	}
}

func writeExecutionOKStatus(w io.Writer, args []string) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", formatStatusLabel(w, "OK", args))
}

func writeExecutionErrorStatus(w io.Writer, err error, args []string) {
	description := "command execution failed"
	if err != nil {
		description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(err.Error()))
	}
	_, _ = fmt.Fprintf(w, "%s %s.\n", formatStatusLabel(w, "ERROR", args), description)
}

func formatStatusLabel(w io.Writer, status string, args []string) string {
	label := fmt.Sprintf("[%s]", strings.TrimSpace(status))
	if hasNoColorArgToken(args) || !common.SupportsColor(w) {
		return label
	}

	switch strings.TrimSpace(status) {
	case "OK":
		return "\x1b[1;32m" + label + "\x1b[0m"
	case "ERROR":
		return "\x1b[1;31m" + label + "\x1b[0m"
	default:
		return label
	}
}

func shouldEmitExecutionStatus(args []string, command *cobra.Command) bool {
	if shouldSuppressStatusMessage(args) {
		return false
	}
	if isHelpOrCompletionInvocation(args) {
		return false
	}
	return commandmeta.EmitsExecutionStatusPath(commandPath(command))
}

func commandPath(command *cobra.Command) string {
	if command == nil {
		return ""
	}
	return strings.TrimSpace(command.CommandPath())
}

func shouldSuppressStatusMessage(args []string) bool {
	flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var noStatus bool
	flags.BoolVarP(&noStatus, "no-status", "n", false, "hide status output")
	if err := flags.Parse(args); err != nil {
		return hasNoStatusArgToken(args)
	}
	return noStatus
}

func isHelpOrCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion", "__complete", "__completeNoDesc":
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}
	return false
}

func hasNoStatusArgToken(args []string) bool {
	for _, current := range args {
		if current == "--no-status" || current == "-n" {
			return true
		}
		if strings.HasPrefix(current, "--no-status=") {
			return strings.TrimSpace(strings.TrimPrefix(current, "--no-status=")) != "false"
		}
	}
	return false
}

func hasNoColorArgToken(args []string) bool {
	for _, current := range args {
		if current == "--no-color" {
			return true
		}
		if strings.HasPrefix(current, "--no-color=") {
			return strings.TrimSpace(strings.TrimPrefix(current, "--no-color=")) != "false"
		}
	}
	return false
}
