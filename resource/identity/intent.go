package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/resource"
)

type Kind int

const (
	Literal Kind = iota
	Rename
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Rename:
		return "rename"
	default:
		return "malformed"
	}
}

// ErrMalformed marks identity values that look like a rename directive but
// cannot be read as one.
var ErrMalformed = errors.New("malformed rename directive")

// Keys names the old/new marker pair a resource type accepts.
type Keys struct {
	Old string
	New string
}

var (
	NameKeys    = Keys{Old: "old_name", New: "new_name"}
	AddressKeys = Keys{Old: "old_address", New: "new_address"}
)

// Intent is the classified identity parameter of one invocation.
type Intent struct {
	Kind   Kind
	Name   string
	Old    string
	New    string
	Reason string
}

func LiteralName(name string) Intent {
	return Intent{Kind: Literal, Name: strings.TrimSpace(name)}
}

func RenameTo(oldName string, newName string) Intent {
	return Intent{Kind: Rename, Old: strings.TrimSpace(oldName), New: strings.TrimSpace(newName)}
}

func malformed(reason string) Intent {
	return Intent{Kind: Malformed, Reason: reason}
}

// LookupValue is the natural-key value used to find the existing object: the
// literal name, or the old name of a rename.
func (i Intent) LookupValue() string {
	if i.Kind == Rename {
		return i.Old
	}
	return i.Name
}

// DesiredValue is the natural-key value the object should carry afterwards.
func (i Intent) DesiredValue() string {
	if i.Kind == Rename {
		return i.New
	}
	return i.Name
}

// Err returns a ValidationError for malformed intents and nil otherwise.
func (i Intent) Err() error {
	if i.Kind != Malformed {
		return nil
	}
	return faults.NewTypedError(faults.ValidationError, i.Reason, ErrMalformed)
}

// Classify reads an identity parameter. Explicit Intent values pass through,
// mappings are read directly, and strings are parsed when they carry either
// marker key; anything else is a literal name.
func Classify(raw any, keys Keys) Intent {
	switch typed := raw.(type) {
	case Intent:
		return typed
	case *Intent:
		if typed == nil {
			return malformed("identity intent is nil")
		}
		return *typed
	case map[string]any:
		return fromMapping(typed, keys)
	case resource.Params:
		return fromMapping(map[string]any(typed), keys)
	case string:
		return classifyString(typed, keys)
	default:
		text, ok := resource.ScalarString(raw)
		if !ok {
			return malformed(fmt.Sprintf("unsupported identity value %T", raw))
		}
		return LiteralName(text)
	}
}

func classifyString(raw string, keys Keys) Intent {
	trimmed := strings.TrimSpace(raw)
	if !looksStructured(trimmed, keys) {
		return LiteralName(trimmed)
	}

	decoded, err := DecodeStructured(trimmed)
	if err != nil {
		return malformed(fmt.Sprintf("invalid rename directive %q: %v", trimmed, err))
	}
	return fromMapping(decoded, keys)
}

func looksStructured(value string, keys Keys) bool {
	if strings.HasPrefix(value, "{") {
		return true
	}
	return strings.Contains(value, keys.Old) && strings.Contains(value, keys.New)
}

// DecodeStructured reads a mapping from JSON or from the single-quoted flow
// mappings that templated inputs render dictionaries as.
func DecodeStructured(value string) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		return decoded, nil
	}

	decoded = nil
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, errors.New("not a mapping")
	}
	return decoded, nil
}

func fromMapping(values map[string]any, keys Keys) Intent {
	oldName, oldOK := resource.ScalarString(values[keys.Old])
	newName, newOK := resource.ScalarString(values[keys.New])
	switch {
	case !oldOK || oldName == "":
		return malformed(fmt.Sprintf("rename directive is missing %q", keys.Old))
	case !newOK || newName == "":
		return malformed(fmt.Sprintf("rename directive is missing %q", keys.New))
	}
	return RenameTo(oldName, newName)
}
