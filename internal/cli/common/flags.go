package common

import "github.com/spf13/cobra"

type GlobalFlags struct {
	Context     string
	Debug       bool
	NoStatus    bool
	NoColor     bool
	Output      string
	MetricsFile string
}

// ParamFlags collects the reconciliation parameters of one command.
type ParamFlags struct {
	Files []string
	Sets  []string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Context, "context", "c", "", "context name")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().StringVar(&flags.MetricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
}

// BindParamFlags registers -f and --set. Commands that reconcile a single
// resource reject more than one file at run time.
func BindParamFlags(command *cobra.Command, flags *ParamFlags) {
	command.Flags().StringArrayVarP(&flags.Files, "file", "f", nil, "parameter file path (use '-' to read from stdin)")
	command.Flags().StringArrayVar(&flags.Sets, "set", nil, "parameter assignment key=value (value is decoded as YAML)")
}
