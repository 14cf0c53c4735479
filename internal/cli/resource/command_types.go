package resource

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/crmarques/ddiconf/catalog"
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/spf13/cobra"
)

type typeInfo struct {
	Type        string `json:"type" yaml:"type"`
	Collection  string `json:"collection" yaml:"collection"`
	Description string `json:"description" yaml:"description"`
	Allocation  string `json:"allocation,omitempty" yaml:"allocation,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

func newTypesCommand(globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported resource types",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			all := catalog.All()
			items := make([]typeInfo, 0, len(all))
			for _, desc := range all {
				item := typeInfo{
					Type:        desc.Type,
					Collection:  desc.Collection,
					Description: desc.Description,
					ReadOnly:    desc.ReadOnly,
				}
				if desc.Allocation != nil {
					item.Allocation = string(desc.Allocation.Kind)
				}
				items = append(items, item)
			}

			format := common.ResolveOutputFormat(command, globalFlags)
			return common.WriteOutput(command, format, items, renderTypesText)
		},
	}
}

func renderTypesText(w io.Writer, items []typeInfo) error {
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range items {
		if _, err := fmt.Fprintf(table, "%s\t%s\t%s\n", item.Type, item.Collection, item.Description); err != nil {
			return err
		}
	}
	return table.Flush()
}
