package resource

import (
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/orchestrator"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newApplyCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var paramFlags common.ParamFlags
	var parallel int

	command := &cobra.Command{
		Use:   "apply <type>",
		Short: "Create or converge resources",
		Long: "Create the resource described by the parameters, or update it in place when it already exists. " +
			"Several parameter sets (files, or lists inside a file) are reconciled independently.",
		Example: "  ddiconf apply ipam_subnet --set space=lab --set address=10.0.1.0/24 --set comment=office\n" +
			"  ddiconf apply dns_record_a -f records.yaml --parallel 4",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeResourceTypes,
		RunE: func(command *cobra.Command, args []string) error {
			if parallel < 1 {
				return common.ValidationError("flag --parallel must be at least 1", nil)
			}

			desc, err := lookupDescriptor(args[0])
			if err != nil {
				return err
			}
			sets, err := common.LoadParams(command, paramFlags)
			if err != nil {
				return err
			}
			session, err := common.OpenSession(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			runner := session.Orchestrator()

			if len(sets) == 1 {
				result := runner.ReconcileCreate(command.Context(), desc, sets[0])
				if err := writeResult(command, globalFlags, result); err != nil {
					return err
				}
				return result.Err()
			}

			results := make([]orchestrator.Result, len(sets))
			var group errgroup.Group
			group.SetLimit(parallel)
			for idx, params := range sets {
				group.Go(func() error {
					results[idx] = runner.ReconcileCreate(command.Context(), desc, params)
					return nil
				})
			}
			_ = group.Wait()

			format := common.ResolveOutputFormat(command, globalFlags)
			if err := common.WriteOutput(command, format, results, renderResultsText); err != nil {
				return err
			}
			return firstFailure(results)
		},
	}

	common.BindParamFlags(command, &paramFlags)
	command.Flags().IntVar(&parallel, "parallel", 1, "number of parameter sets reconciled concurrently")
	return command
}

func firstFailure(results []orchestrator.Result) error {
	for _, result := range results {
		if err := result.Err(); err != nil {
			return err
		}
	}
	return nil
}
