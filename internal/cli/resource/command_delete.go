package resource

import (
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/orchestrator"
	"github.com/spf13/cobra"
)

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var paramFlags common.ParamFlags
	var confirmDelete bool

	command := &cobra.Command{
		Use:               "delete <type>",
		Short:             "Delete a resource",
		Example:           "  ddiconf delete ipam_subnet --set space=lab --set address=10.0.1.0/24 --confirm-delete",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeResourceTypes,
		RunE: func(command *cobra.Command, args []string) error {
			if !confirmDelete {
				return common.ValidationError("flag --confirm-delete is required: confirm deletion", nil)
			}
			return runSingle(command, deps, globalFlags, args[0], paramFlags, func(o *orchestrator.Orchestrator) reconcileFunc {
				return o.ReconcileDelete
			})
		},
	}

	common.BindParamFlags(command, &paramFlags)
	command.Flags().BoolVarP(&confirmDelete, "confirm-delete", "y", false, "confirm deletion")
	return command
}
