package common

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/crmarques/ddiconf/resource"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// LoadParams returns one parameter set per document found in the files, or a
// single set when no file is given. Every --set assignment is applied on top
// of each set.
func LoadParams(command *cobra.Command, flags ParamFlags) ([]resource.Params, error) {
	sets := make([]resource.Params, 0, len(flags.Files))
	stdinUsed := false
	for _, path := range flags.Files {
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, ValidationError("parameter file path must not be empty", nil)
		}

		var data []byte
		var err error
		if path == "-" {
			if stdinUsed {
				return nil, ValidationError("stdin can be read only once", nil)
			}
			stdinUsed = true
			data, err = io.ReadAll(command.InOrStdin())
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, ValidationError("failed to read parameter file "+path, err)
		}

		decoded, err := DecodeParams(data)
		if err != nil {
			return nil, ValidationError("invalid parameter file "+path, err)
		}
		sets = append(sets, decoded...)
	}
	if len(flags.Files) == 0 {
		sets = append(sets, resource.Params{})
	}

	for idx := range sets {
		for _, assignment := range flags.Sets {
			if err := ApplyAssignment(sets[idx], assignment); err != nil {
				return nil, err
			}
		}
	}
	return sets, nil
}

// LoadSingleParams is LoadParams for commands handling exactly one resource.
func LoadSingleParams(command *cobra.Command, flags ParamFlags) (resource.Params, error) {
	sets, err := LoadParams(command, flags)
	if err != nil {
		return nil, err
	}
	if len(sets) != 1 {
		return nil, ValidationError("command accepts exactly one parameter set", nil)
	}
	return sets[0], nil
}

// DecodeParams accepts a mapping, a sequence of mappings, or a stream of
// mapping documents.
func DecodeParams(data []byte) ([]resource.Params, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	sets := make([]resource.Params, 0, 1)
	for {
		var document any
		err := decoder.Decode(&document)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch typed := document.(type) {
		case nil:
			continue
		case map[string]any:
			sets = append(sets, resource.Params(typed))
		case []any:
			for _, item := range typed {
				mapping, ok := item.(map[string]any)
				if !ok {
					return nil, ValidationError("parameter list items must be mappings", nil)
				}
				sets = append(sets, resource.Params(mapping))
			}
		default:
			return nil, ValidationError("parameters must be a mapping", nil)
		}
	}
	if len(sets) == 0 {
		sets = append(sets, resource.Params{})
	}
	return sets, nil
}

// ApplyAssignment sets a dotted key=value pair on target. The value is
// decoded as a YAML scalar, sequence or mapping and kept as the raw string
// when it does not parse.
func ApplyAssignment(target resource.Params, raw string) error {
	key, value, found := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return ValidationError("invalid assignment "+raw+": expected key=value", nil)
	}
	return setDottedAssignmentValue(target, key, decodeAssignmentValue(value))
}

func decodeAssignmentValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var decoded any
	if err := yaml.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return trimmed
	}
	if decoded == nil {
		return nil
	}
	return decoded
}

func setDottedAssignmentValue(target map[string]any, dottedKey string, value any) error {
	segments := strings.Split(strings.TrimSpace(dottedKey), ".")
	current := target
	for idx, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return ValidationError("invalid assignment key: empty path segment", nil)
		}
		isLeaf := idx == len(segments)-1
		if isLeaf {
			current[segment] = value
			return nil
		}

		next, exists := current[segment]
		if !exists {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return ValidationError("invalid assignment: key path conflicts with scalar value", nil)
		}
		current = child
	}

	return nil
}

// ParseStringAssignments parses repeated key=value flags into a flat map.
func ParseStringAssignments(flagName string, raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(raw))
	for _, item := range raw {
		key, value, found := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, ValidationError("invalid --"+flagName+" value "+item+": expected key=value", nil)
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}
