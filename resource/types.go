package resource

import (
	"fmt"
	"strconv"
	"strings"
)

type Value = any

// Object is one remote platform object as decoded from a JSON response.
type Object = map[string]any

// Params is the caller-supplied parameter mapping for one invocation.
type Params map[string]any

func (p Params) Has(key string) bool {
	if p == nil {
		return false
	}
	value, ok := p[key]
	return ok && value != nil
}

// String returns the trimmed string form of a parameter. Scalars are
// rendered with their natural textual form; composite values report false.
func (p Params) String(key string) (string, bool) {
	if !p.Has(key) {
		return "", false
	}
	return ScalarString(p[key])
}

func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	cloned := make(Params, len(p))
	for key, value := range p {
		cloned[key] = value
	}
	return cloned
}

// ScalarString renders scalar values as text; maps and lists are rejected.
func ScalarString(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(typed), true
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case int32:
		return strconv.FormatInt(int64(typed), 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case fmt.Stringer:
		return strings.TrimSpace(typed.String()), true
	case map[string]any, []any:
		return "", false
	default:
		return strings.TrimSpace(fmt.Sprint(typed)), true
	}
}

// ID returns the platform identifier of an object.
func ID(object Object) string {
	if object == nil {
		return ""
	}
	id, _ := object["id"].(string)
	return strings.TrimSpace(id)
}

// Results extracts the `results` list of a list response.
func Results(body Value) []Object {
	envelope, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	items, ok := envelope["results"].([]any)
	if !ok {
		return nil
	}
	objects := make([]Object, 0, len(items))
	for _, item := range items {
		if object, ok := item.(map[string]any); ok {
			objects = append(objects, object)
		}
	}
	return objects
}

// Result extracts the `result` object of a create/update response, falling
// back to the body itself when the envelope is absent.
func Result(body Value) Value {
	envelope, ok := body.(map[string]any)
	if !ok {
		return body
	}
	if inner, exists := envelope["result"]; exists {
		return inner
	}
	return body
}
