package resource

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/crmarques/ddiconf/catalog"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/orchestrator"
	resourcedomain "github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/yamlutil"
	"github.com/spf13/cobra"
)

// NewCommands returns the reconciliation commands registered at the root.
func NewCommands(deps common.CommandDependencies, globalFlags *common.GlobalFlags) []*cobra.Command {
	return []*cobra.Command{
		newApplyCommand(deps, globalFlags),
		newUpdateCommand(deps, globalFlags),
		newDeleteCommand(deps, globalFlags),
		newListCommand(deps, globalFlags),
		newTypesCommand(globalFlags),
	}
}

func lookupDescriptor(resourceType string) (descriptor.Descriptor, error) {
	desc, ok := catalog.Lookup(strings.TrimSpace(resourceType))
	if !ok {
		return descriptor.Descriptor{}, common.ValidationError(
			fmt.Sprintf("unknown resource type %q; run 'ddiconf types' to list supported types", resourceType),
			nil,
		)
	}
	return desc, nil
}

func completeResourceTypes(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return catalog.Types(), cobra.ShellCompDirectiveNoFileComp
}

// reconcileFunc is one orchestrator entry point.
type reconcileFunc func(context.Context, descriptor.Descriptor, resourcedomain.Params) orchestrator.Result

// runSingle reconciles one parameter set and prints its result.
func runSingle(
	command *cobra.Command,
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	resourceType string,
	paramFlags common.ParamFlags,
	operation func(*orchestrator.Orchestrator) reconcileFunc,
) error {
	desc, err := lookupDescriptor(resourceType)
	if err != nil {
		return err
	}
	params, err := common.LoadSingleParams(command, paramFlags)
	if err != nil {
		return err
	}

	session, err := common.OpenSession(command.Context(), deps, globalFlags)
	if err != nil {
		return err
	}

	result := operation(session.Orchestrator())(command.Context(), desc, params)
	if err := writeResult(command, globalFlags, result); err != nil {
		return err
	}
	return result.Err()
}

func writeResult(command *cobra.Command, globalFlags *common.GlobalFlags, result orchestrator.Result) error {
	format := common.ResolveOutputFormat(command, globalFlags)
	return common.WriteOutput(command, format, result, renderResultText)
}

func renderResultText(w io.Writer, result orchestrator.Result) error {
	if !result.OK() {
		failure := result.Failure
		if failure == nil {
			_, err := fmt.Fprintln(w, "failed")
			return err
		}
		line := fmt.Sprintf("failed: %s", failure.Message)
		if failure.StatusCode != 0 {
			line = fmt.Sprintf("%s (status %d)", line, failure.StatusCode)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}

	summary := string(result.Action)
	if result.Changed {
		summary += " (changed)"
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	return writeYAMLPayload(w, result.Payload)
}

func writeYAMLPayload(w io.Writer, payload any) error {
	if payload == nil {
		return nil
	}
	encoded, err := yamlutil.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(encoded)
	return err
}

func renderResultsText(w io.Writer, results []orchestrator.Result) error {
	for idx, result := range results {
		if _, err := fmt.Fprintf(w, "[%d] ", idx+1); err != nil {
			return err
		}
		if err := renderResultText(w, result); err != nil {
			return err
		}
	}
	return nil
}
