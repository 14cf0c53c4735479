package resource

import (
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/orchestrator"
	"github.com/spf13/cobra"
)

func newUpdateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var paramFlags common.ParamFlags

	command := &cobra.Command{
		Use:   "update <type>",
		Short: "Update an existing resource",
		Example: "  ddiconf update ipam_subnet --set space=lab --set address=10.0.1.0/24 --set comment=lab\n" +
			"  ddiconf update dns_view --set 'name={old_name: staging, new_name: stage}'",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeResourceTypes,
		RunE: func(command *cobra.Command, args []string) error {
			return runSingle(command, deps, globalFlags, args[0], paramFlags, func(o *orchestrator.Orchestrator) reconcileFunc {
				return o.ReconcileUpdate
			})
		},
	}

	common.BindParamFlags(command, &paramFlags)
	return command
}
