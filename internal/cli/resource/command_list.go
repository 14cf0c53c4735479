package resource

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/crmarques/ddiconf/internal/cli/common"
	"github.com/crmarques/ddiconf/orchestrator"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
)

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var paramFlags common.ParamFlags
	var filters []string
	var tagFilters []string
	var fields []string
	var jqExpression string

	command := &cobra.Command{
		Use:   "list <type>",
		Short: "List resources matching key parameters and filters",
		Example: "  ddiconf list ipam_subnet --set space=lab --fields address,cidr,comment\n" +
			"  ddiconf list dns_record_a --set zone=example.com. --tag-filter env=prod --jq '.[].name_in_zone'",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeResourceTypes,
		RunE: func(command *cobra.Command, args []string) error {
			desc, err := lookupDescriptor(args[0])
			if err != nil {
				return err
			}
			params, err := common.LoadSingleParams(command, paramFlags)
			if err != nil {
				return err
			}
			options, err := listOptions(filters, tagFilters, fields)
			if err != nil {
				return err
			}

			var query *gojq.Code
			if strings.TrimSpace(jqExpression) != "" {
				query, err = compileJQ(jqExpression)
				if err != nil {
					return err
				}
			}

			session, err := common.OpenSession(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}

			result := session.Orchestrator().List(command.Context(), desc, params, options)
			if result.OK() && query != nil {
				filtered, err := applyJQ(command.Context(), query, result.Payload)
				if err != nil {
					return err
				}
				result.Payload = filtered
			}
			if err := writeResult(command, globalFlags, result); err != nil {
				return err
			}
			return result.Err()
		},
	}

	common.BindParamFlags(command, &paramFlags)
	command.Flags().StringArrayVar(&filters, "filter", nil, "additional field filter key=value")
	command.Flags().StringArrayVar(&tagFilters, "tag-filter", nil, "tag filter key=value")
	command.Flags().StringSliceVar(&fields, "fields", nil, "comma separated attributes to return")
	command.Flags().StringVar(&jqExpression, "jq", "", "jq expression applied to the listed objects")
	return command
}

func listOptions(filters []string, tagFilters []string, fields []string) (orchestrator.ListOptions, error) {
	parsedFilters, err := common.ParseStringAssignments("filter", filters)
	if err != nil {
		return orchestrator.ListOptions{}, err
	}
	parsedTags, err := common.ParseStringAssignments("tag-filter", tagFilters)
	if err != nil {
		return orchestrator.ListOptions{}, err
	}

	trimmed := make([]string, 0, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			trimmed = append(trimmed, field)
		}
	}
	return orchestrator.ListOptions{Fields: trimmed, Filters: parsedFilters, TagFilters: parsedTags}, nil
}

func compileJQ(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(strings.TrimSpace(expression))
	if err != nil {
		return nil, common.ValidationError("invalid list jq expression", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, common.ValidationError("invalid list jq expression", err)
	}
	return code, nil
}

// applyJQ runs code over payload. A single output is returned as is and
// several outputs as a list.
func applyJQ(ctx context.Context, code *gojq.Code, payload any) (any, error) {
	input, err := jqInput(payload)
	if err != nil {
		return nil, err
	}

	iterator := code.RunWithContext(ctx, input)
	results := make([]any, 0, 1)
	for {
		value, ok := iterator.Next()
		if !ok {
			break
		}
		if valueErr, isErr := value.(error); isErr {
			return nil, common.ValidationError("failed to evaluate list jq expression", valueErr)
		}
		results = append(results, value)
	}

	if len(results) == 0 {
		return []any{}, nil
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// jqInput re-decodes payload through JSON so numbers use types gojq accepts.
func jqInput(payload any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, common.ValidationError("list payload cannot be encoded for jq", err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, common.ValidationError("list payload cannot be decoded for jq", err)
	}
	return decoded, nil
}
