package config

import (
	"fmt"
	"io"

	configdomain "github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/yamlutil"
	"github.com/spf13/cobra"
)

const redacted = "<redacted>"

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Inspect platform contexts",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	command.AddCommand(
		newShowCommand(deps, globalFlags),
		newCurrentCommand(deps),
	)
	return command
}

func newShowCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved context with credentials redacted",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			resolved, err := contexts.ResolveContext(command.Context(), configdomain.ContextSelection{Name: globalFlags.Context})
			if err != nil {
				return err
			}

			return common.WriteOutput(command, common.OutputYAML, redactContext(resolved), func(w io.Writer, value configdomain.Context) error {
				encoded, err := yamlutil.Marshal(value)
				if err != nil {
					return err
				}
				_, err = w.Write(encoded)
				return err
			})
		},
	}
}

func newCurrentCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current context name",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			current, err := contexts.GetCurrent(command.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(command.OutOrStdout(), current.Name)
			return err
		},
	}
}

func redactContext(cfg configdomain.Context) configdomain.Context {
	auth := cfg.Platform.Auth
	if auth == nil {
		return cfg
	}

	cloned := configdomain.Auth{}
	if auth.APIKey != nil {
		cloned.APIKey = &configdomain.TokenAuth{Token: redacted}
	}
	if auth.BearerToken != nil {
		cloned.BearerToken = &configdomain.TokenAuth{Token: redacted}
	}
	if auth.CustomHeader != nil {
		cloned.CustomHeader = &configdomain.HeaderTokenAuth{Header: auth.CustomHeader.Header, Token: redacted}
	}
	cfg.Platform.Auth = &cloned
	return cfg
}
