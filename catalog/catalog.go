// Package catalog holds the descriptors of every supported resource type.
package catalog

import (
	"sort"
	"strings"

	"github.com/crmarques/ddiconf/descriptor"
)

var registry = map[string]descriptor.Descriptor{}

func register(descriptors ...descriptor.Descriptor) {
	for _, desc := range descriptors {
		registry[desc.Type] = desc
	}
}

func init() {
	register(ipamDescriptors()...)
	register(dhcpDescriptors()...)
	register(dnsDescriptors()...)
}

// Lookup returns the descriptor registered for resourceType. Dashes are
// accepted in place of underscores.
func Lookup(resourceType string) (descriptor.Descriptor, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(resourceType)), "-", "_")
	desc, ok := registry[normalized]
	return desc, ok
}

// Types lists the registered resource types in order.
func Types() []string {
	types := make([]string, 0, len(registry))
	for resourceType := range registry {
		types = append(types, resourceType)
	}
	sort.Strings(types)
	return types
}

// All returns every registered descriptor ordered by type.
func All() []descriptor.Descriptor {
	types := Types()
	descriptors := make([]descriptor.Descriptor, len(types))
	for idx, resourceType := range types {
		descriptors[idx] = registry[resourceType]
	}
	return descriptors
}

var (
	ipSpaceTargets     = []descriptor.Target{{Collection: "ipam/ip_space", LookupField: "name"}}
	dhcpServerTargets  = []descriptor.Target{{Collection: "dhcp/host", LookupField: "name"}, {Collection: "dhcp/ha_group", LookupField: "name"}}
	dnsViewTargets     = []descriptor.Target{{Collection: "dns/view", LookupField: "name"}}
	dnsHostTargets     = []descriptor.Target{{Collection: "dns/host", LookupField: "name"}}
	authZoneTargets    = []descriptor.Target{{Collection: "dns/auth_zone", LookupField: "fqdn"}}
	optionSpaceTargets = []descriptor.Target{{Collection: "dhcp/option_space", LookupField: "name"}}
)

func nameKey() descriptor.KeyField {
	return descriptor.KeyField{Param: "name", Field: "name", Kind: descriptor.KeyName, Rename: true}
}

func spaceReference(field string) descriptor.ReferenceField {
	return descriptor.ReferenceField{
		Param:    "space",
		Field:    field,
		Targets:  ipSpaceTargets,
		Key:      true,
		Required: true,
	}
}

func dhcpHostReference() descriptor.ReferenceField {
	return descriptor.ReferenceField{Param: "dhcp_host", Field: "dhcp_host", Targets: dhcpServerTargets}
}

// comment is resent as "" on every update unless supplied.
func comment() descriptor.PayloadField {
	return descriptor.PayloadField{Param: "comment", Field: "comment", Default: "", AlwaysSend: true}
}

// optional sends Default on create only.
func optional(param string) descriptor.PayloadField {
	return descriptor.PayloadField{Param: param, Field: param, Default: ""}
}

func passthrough(param string) descriptor.PayloadField {
	return descriptor.PayloadField{Param: param, Field: param}
}
