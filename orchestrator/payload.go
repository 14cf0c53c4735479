package orchestrator

import (
	"context"
	"fmt"
	"net/netip"
	"sort"

	"github.com/crmarques/ddiconf/allocator"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/resource"
)

const (
	tagsParam        = "tags"
	dhcpOptionsParam = "dhcp_options"
)

var optionCodeTargets = []descriptor.Target{{Collection: "dhcp/option_code", LookupField: "name"}}

type payloadMode int

const (
	payloadForCreate payloadMode = iota
	payloadForUpdate
)

// buildPayload assembles the request body from the given keys and the
// caller parameters. Update payloads carry only the supplied fields plus
// the always-resent defaults.
func (r *reconciliation) buildPayload(ctx context.Context, mode payloadMode, keys []keyValue) (map[string]any, error) {
	payload := map[string]any{}
	for _, key := range keys {
		if mode == payloadForCreate {
			key.createFields(payload)
		} else {
			key.updateFields(payload)
		}
	}

	if mode == payloadForCreate {
		for field, value := range r.desc.Constants {
			resource.SetField(payload, field, value)
		}
		for _, reference := range r.desc.KeyReferences() {
			if id, ok := r.keyRefs[reference.Param]; ok {
				resource.SetField(payload, reference.Field, id)
			}
		}
	}

	if err := r.addReferences(ctx, payload, mode); err != nil {
		return nil, err
	}
	if err := r.addFields(payload, mode); err != nil {
		return nil, err
	}
	if err := r.addTags(payload); err != nil {
		return nil, err
	}

	prefix, _ := keySet{values: keys}.prefix()
	if err := r.addDHCPOptions(ctx, payload, prefix); err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *reconciliation) addReferences(ctx context.Context, payload map[string]any, mode payloadMode) error {
	for _, reference := range r.desc.References {
		if reference.Key {
			continue
		}
		if !r.params.Has(reference.Param) {
			if reference.Required && mode == payloadForCreate {
				return faults.NewTypedError(
					faults.ValidationError,
					fmt.Sprintf("missing mandatory parameter %q", reference.Param),
					nil,
				)
			}
			continue
		}

		value, present, err := r.resolveReference(ctx, reference, r.params[reference.Param])
		if err != nil {
			return err
		}
		if present {
			resource.SetField(payload, reference.Field, value)
		}
	}
	return nil
}

func (r *reconciliation) resolveReference(ctx context.Context, reference descriptor.ReferenceField, raw any) (any, bool, error) {
	switch {
	case reference.Item != "":
		items, ok := raw.([]any)
		if !ok {
			return nil, false, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("%q must be a list of objects", reference.Param),
				nil,
			)
		}
		resolved := make([]any, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, false, faults.NewTypedError(
					faults.ValidationError,
					fmt.Sprintf("%q must be a list of objects", reference.Param),
					nil,
				)
			}
			copied := make(map[string]any, len(entry))
			for key, value := range entry {
				copied[key] = value
			}
			if name, ok := resource.ScalarString(entry[reference.Item]); ok && name != "" {
				id, err := r.resolver.Require(ctx, reference.Param+"."+reference.Item, reference.Targets, name)
				if err != nil {
					return nil, false, err
				}
				copied[reference.Item] = id
			}
			resolved = append(resolved, copied)
		}
		return resolved, true, nil

	case reference.List:
		names, err := referenceNames(reference.Param, raw)
		if err != nil {
			return nil, false, err
		}
		resolved := make([]any, 0, len(names))
		for _, name := range names {
			id, err := r.resolver.Require(ctx, reference.Param, reference.Targets, name)
			if err != nil {
				return nil, false, err
			}
			resolved = append(resolved, wrapReference(reference, id))
		}
		return resolved, true, nil

	default:
		name, ok := resource.ScalarString(raw)
		if !ok {
			return nil, false, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("%q must be a name", reference.Param),
				nil,
			)
		}
		if name == "" {
			return nil, false, nil
		}
		id, err := r.resolver.Require(ctx, reference.Param, reference.Targets, name)
		if err != nil {
			return nil, false, err
		}
		return wrapReference(reference, id), true, nil
	}
}

func referenceNames(param string, raw any) ([]string, error) {
	if name, ok := raw.(string); ok {
		raw = []any{name}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q must be a list of names", param), nil)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := resource.ScalarString(item)
		if !ok || name == "" {
			return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q must be a list of names", param), nil)
		}
		names = append(names, name)
	}
	return names, nil
}

func wrapReference(reference descriptor.ReferenceField, id string) any {
	if reference.Wrap == "" {
		return id
	}
	return map[string]any{reference.Wrap: id}
}

func (r *reconciliation) addFields(payload map[string]any, mode payloadMode) error {
	for _, field := range r.desc.Payload {
		if r.params.Has(field.Param) {
			value := r.params[field.Param]
			if field.Names {
				names, err := namesOf(field.Param, value)
				if err != nil {
					return err
				}
				value = names
			}
			resource.SetField(payload, field.Field, value)
			continue
		}

		if field.Default == nil {
			continue
		}
		if mode == payloadForCreate || field.AlwaysSend {
			resource.SetField(payload, field.Field, field.Default)
		}
	}
	return nil
}

// namesOf wraps a scalar name as the [{name, type: user}] list the platform
// stores names as.
func namesOf(param string, value any) ([]any, error) {
	switch typed := value.(type) {
	case []any:
		names := make([]any, 0, len(typed))
		for _, item := range typed {
			if entry, ok := item.(map[string]any); ok {
				names = append(names, entry)
				continue
			}
			name, ok := resource.ScalarString(item)
			if !ok {
				return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q must be a name or list of names", param), nil)
			}
			names = append(names, userName(name))
		}
		return names, nil
	default:
		name, ok := resource.ScalarString(value)
		if !ok {
			return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q must be a name or list of names", param), nil)
		}
		if name == "" {
			return []any{}, nil
		}
		return []any{userName(name)}, nil
	}
}

func userName(name string) map[string]any {
	return map[string]any{"name": name, "type": "user"}
}

func (r *reconciliation) addTags(payload map[string]any) error {
	if !r.desc.Tags || !r.params.Has(tagsParam) {
		return nil
	}
	tags, ok := resource.FlattenTags(r.params[tagsParam])
	if !ok {
		return faults.NewTypedError(
			faults.ValidationError,
			"tags must be a mapping or a list of single-key mappings",
			nil,
		)
	}
	payload[tagsParam] = tags
	return nil
}

// addDHCPOptions translates {option name: value} entries into option code
// references. With router tokens enabled, first and last are replaced by the
// router address derived from prefix.
func (r *reconciliation) addDHCPOptions(ctx context.Context, payload map[string]any, prefix netip.Prefix) error {
	if !r.desc.DHCPOptions || !r.params.Has(dhcpOptionsParam) {
		return nil
	}

	entries, err := optionEntries(r.params[dhcpOptionsParam])
	if err != nil {
		return err
	}

	options := make([]any, 0, len(entries))
	for _, entry := range entries {
		names := make([]string, 0, len(entry))
		for name := range entry {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			value, ok := resource.ScalarString(entry[name])
			if !ok {
				return faults.NewTypedError(
					faults.ValidationError,
					fmt.Sprintf("dhcp option %q must have a scalar value", name),
					nil,
				)
			}
			if r.desc.RouterTokens && allocator.IsRouterToken(value) {
				if !prefix.IsValid() {
					return faults.NewTypedError(
						faults.ValidationError,
						fmt.Sprintf("dhcp option %q uses %q but no subnet prefix is known", name, value),
						nil,
					)
				}
				value, err = allocator.DeriveRouter(prefix, value)
				if err != nil {
					return err
				}
			}

			id, err := r.resolver.Require(ctx, dhcpOptionsParam, optionCodeTargets, name)
			if err != nil {
				return err
			}
			options = append(options, map[string]any{
				"option_code":  id,
				"option_value": value,
				"type":         "option",
			})
		}
	}
	payload[dhcpOptionsParam] = options
	return nil
}

func optionEntries(raw any) ([]map[string]any, error) {
	switch typed := raw.(type) {
	case map[string]any:
		return []map[string]any{typed}, nil
	case resource.Params:
		return []map[string]any{map[string]any(typed)}, nil
	case []any:
		entries := make([]map[string]any, 0, len(typed))
		for _, item := range typed {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, faults.NewTypedError(
					faults.ValidationError,
					"dhcp_options must be a list of {option name: value} mappings",
					nil,
				)
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, faults.NewTypedError(
			faults.ValidationError,
			"dhcp_options must be a list of {option name: value} mappings",
			nil,
		)
	}
}
