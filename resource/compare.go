package resource

import "reflect"

// Contains reports whether every top-level field of desired is present in
// observed with an equal value. Field values are compared whole: nested maps
// must hold the same keys and lists the same elements, so a shrunk or cleared
// tag mapping is a change. Keys with empty values are ignored on both sides
// since the platform omits them from responses.
func Contains(observed Value, desired Value) bool {
	normalizedObserved, err := Normalize(observed)
	if err != nil {
		return false
	}
	normalizedDesired, err := Normalize(desired)
	if err != nil {
		return false
	}

	desiredFields, ok := normalizedDesired.(map[string]any)
	if !ok {
		return equal(normalizedObserved, normalizedDesired)
	}
	observedFields, ok := normalizedObserved.(map[string]any)
	if !ok {
		return len(desiredFields) == 0 && normalizedObserved == nil
	}
	for key, desiredValue := range desiredFields {
		observedValue, exists := observedFields[key]
		if !exists {
			if isEmptyValue(desiredValue) {
				continue
			}
			return false
		}
		if !equal(observedValue, desiredValue) {
			return false
		}
	}
	return true
}

func equal(observed any, desired any) bool {
	switch typedDesired := desired.(type) {
	case map[string]any:
		typedObserved, ok := observed.(map[string]any)
		if !ok {
			return len(typedDesired) == 0 && observed == nil
		}
		for key, desiredValue := range typedDesired {
			observedValue, exists := typedObserved[key]
			if !exists && isEmptyValue(desiredValue) {
				continue
			}
			if !equal(observedValue, desiredValue) {
				return false
			}
		}
		for key, observedValue := range typedObserved {
			if _, exists := typedDesired[key]; !exists && !isEmptyValue(observedValue) {
				return false
			}
		}
		return true
	case []any:
		typedObserved, ok := observed.([]any)
		if !ok {
			return len(typedDesired) == 0 && observed == nil
		}
		if len(typedObserved) != len(typedDesired) {
			return false
		}
		for idx := range typedDesired {
			if !equal(typedObserved[idx], typedDesired[idx]) {
				return false
			}
		}
		return true
	case int64:
		switch typedObserved := observed.(type) {
		case int64:
			return typedObserved == typedDesired
		case float64:
			return typedObserved == float64(typedDesired)
		}
		return false
	case float64:
		switch typedObserved := observed.(type) {
		case float64:
			return typedObserved == typedDesired
		case int64:
			return float64(typedObserved) == typedDesired
		}
		return false
	case nil:
		return isEmptyValue(observed)
	default:
		return reflect.DeepEqual(observed, desired)
	}
}

func isEmptyValue(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	return false
}
