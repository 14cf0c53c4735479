package orchestrator

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/crmarques/ddiconf/allocator"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/resource/identity"
)

// keyValue is one parsed natural-key parameter.
type keyValue struct {
	field  descriptor.KeyField
	intent identity.Intent

	// set for KeyPrefix keys
	lookupPrefix  netip.Prefix
	desiredPrefix netip.Prefix
}

type keySet struct {
	values []keyValue
	// allocation is set when the allocation key carries a next-available
	// directive instead of a literal value.
	allocation *allocator.Request
}

func (k keySet) renames() bool {
	for _, value := range k.values {
		if value.intent.Kind == identity.Rename {
			return true
		}
	}
	return false
}

func (k keySet) lookupTerms() []filter.Term {
	terms := make([]filter.Term, 0, len(k.values))
	for _, value := range k.values {
		terms = append(terms, value.terms(false)...)
	}
	return terms
}

func (k keySet) desiredTerms() []filter.Term {
	terms := make([]filter.Term, 0, len(k.values))
	for _, value := range k.values {
		terms = append(terms, value.terms(true)...)
	}
	return terms
}

// prefix returns the desired prefix of the first prefix key.
func (k keySet) prefix() (netip.Prefix, bool) {
	for _, value := range k.values {
		if value.field.Kind == descriptor.KeyPrefix {
			return value.desiredPrefix, true
		}
	}
	return netip.Prefix{}, false
}

func (k keySet) String() string {
	parts := make([]string, 0, len(k.values))
	for _, value := range k.values {
		parts = append(parts, value.field.Param+"="+value.intent.LookupValue())
	}
	return strings.Join(parts, " ")
}

func (k keyValue) terms(desired bool) []filter.Term {
	if k.field.Kind == descriptor.KeyPrefix {
		prefix := k.lookupPrefix
		if desired {
			prefix = k.desiredPrefix
		}
		return []filter.Term{
			filter.Eq(k.field.Field, prefix.Addr().String()),
			filter.Eq("cidr", prefix.Bits()),
		}
	}

	value := k.intent.LookupValue()
	if desired {
		value = k.intent.DesiredValue()
	}
	return []filter.Term{filter.Eq(k.field.Field, value)}
}

// createFields writes the desired key into a creation payload. Prefixes are
// sent as separate address and cidr fields.
func (k keyValue) createFields(payload map[string]any) {
	if k.field.Kind == descriptor.KeyPrefix {
		resource.SetField(payload, k.field.Field, k.desiredPrefix.Addr().String())
		payload["cidr"] = k.desiredPrefix.Bits()
		return
	}
	resource.SetField(payload, k.field.Field, k.intent.DesiredValue())
}

// updateFields writes the desired key into an update payload. Only the
// prefix length of an existing prefix can change.
func (k keyValue) updateFields(payload map[string]any) {
	if k.field.Kind == descriptor.KeyPrefix {
		payload["cidr"] = k.desiredPrefix.Bits()
		return
	}
	resource.SetField(payload, k.field.Field, k.intent.DesiredValue())
}

type keyMode int

const (
	keysForCreate keyMode = iota
	keysForMutation
	keysForList
)

// parseKeys reads and validates every natural-key parameter. Allocation
// directives are accepted on create only; list mode treats every key as
// optional and rejects rename directives.
func parseKeys(desc descriptor.Descriptor, params resource.Params, mode keyMode) (keySet, error) {
	set := keySet{}
	for _, field := range desc.Keys {
		if !params.Has(field.Param) {
			if field.Optional || mode == keysForList {
				continue
			}
			return keySet{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("missing mandatory parameter %q", field.Param),
				nil,
			)
		}
		raw := params[field.Param]

		if desc.Allocation != nil && desc.Allocation.KeyParam == field.Param {
			request, present, err := allocator.Detect(*desc.Allocation, raw)
			if err != nil {
				return keySet{}, err
			}
			if present {
				if mode != keysForCreate {
					return keySet{}, faults.NewTypedError(
						faults.ValidationError,
						fmt.Sprintf("%s is only valid when creating %s", desc.Allocation.Marker(), desc.Type),
						nil,
					)
				}
				set.allocation = &request
				continue
			}
		}

		value, err := parseKey(field, raw)
		if err != nil {
			return keySet{}, err
		}
		if mode == keysForList && value.intent.Kind == identity.Rename {
			return keySet{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("%q must be a literal value to list", field.Param),
				nil,
			)
		}
		set.values = append(set.values, value)
	}
	return set, nil
}

func parseKey(field descriptor.KeyField, raw any) (keyValue, error) {
	var intent identity.Intent
	if field.Rename {
		intent = identity.Classify(raw, field.RenameKeys())
	} else {
		text, ok := resource.ScalarString(raw)
		if !ok {
			return keyValue{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("%q must be a scalar value", field.Param),
				nil,
			)
		}
		intent = identity.LiteralName(text)
	}
	if err := intent.Err(); err != nil {
		return keyValue{}, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("parameter %q", field.Param), err)
	}
	if intent.LookupValue() == "" {
		return keyValue{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("parameter %q must not be empty", field.Param),
			nil,
		)
	}

	value := keyValue{field: field, intent: intent}
	switch field.Kind {
	case descriptor.KeyPrefix:
		lookup, err := allocator.ParsePrefix(intent.LookupValue())
		if err != nil {
			return keyValue{}, err
		}
		desired, err := allocator.ParsePrefix(intent.DesiredValue())
		if err != nil {
			return keyValue{}, err
		}
		if lookup.Addr() != desired.Addr() {
			return keyValue{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("only the prefix length of %s can change, got %s", lookup, desired),
				nil,
			)
		}
		value.lookupPrefix = lookup
		value.desiredPrefix = desired
	case descriptor.KeyAddress:
		if _, err := allocator.ParseAddress(intent.LookupValue()); err != nil {
			return keyValue{}, err
		}
		if _, err := allocator.ParseAddress(intent.DesiredValue()); err != nil {
			return keyValue{}, err
		}
	}
	return value, nil
}

func constantTerms(constants map[string]string) []filter.Term {
	fields := make([]string, 0, len(constants))
	for field := range constants {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	terms := make([]filter.Term, 0, len(fields))
	for _, field := range fields {
		terms = append(terms, filter.Eq(field, constants[field]))
	}
	return terms
}
