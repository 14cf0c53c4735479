package resource

import "strings"

// LookupField walks a dotted attribute path such as `rdata.dname`.
func LookupField(payload map[string]any, attribute string) (any, bool) {
	trimmed := strings.TrimSpace(attribute)
	if trimmed == "" {
		return nil, false
	}

	current := any(payload)
	for _, segment := range strings.Split(trimmed, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, false
		}

		mapValue, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		next, exists := mapValue[segment]
		if !exists {
			return nil, false
		}
		current = next
	}

	return current, true
}

func LookupScalarField(payload map[string]any, attribute string) (string, bool) {
	value, ok := LookupField(payload, attribute)
	if !ok {
		return "", false
	}
	return ScalarString(value)
}

// SetField assigns value at a dotted attribute path, creating intermediate
// objects as needed. Existing non-object segments are replaced.
func SetField(payload map[string]any, attribute string, value any) {
	segments := strings.Split(strings.TrimSpace(attribute), ".")
	if payload == nil || len(segments) == 0 || segments[0] == "" {
		return
	}

	current := payload
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// FlattenTags accepts tags either as a mapping or as the list-of-single-key
// mappings produced by playbook-style inputs, and returns one flat mapping.
func FlattenTags(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		flattened := make(map[string]any, len(typed))
		for key, item := range typed {
			flattened[key] = item
		}
		return flattened, true
	case Params:
		return FlattenTags(map[string]any(typed))
	case []any:
		flattened := map[string]any{}
		for _, item := range typed {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			for key, tagValue := range entry {
				flattened[key] = tagValue
			}
		}
		return flattened, true
	default:
		return nil, false
	}
}
