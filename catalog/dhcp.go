package catalog

import "github.com/crmarques/ddiconf/descriptor"

func dhcpDescriptors() []descriptor.Descriptor {
	return []descriptor.Descriptor{
		{
			Type:        "dhcp_fixed_address",
			Collection:  "dhcp/fixed_address",
			Description: "DHCP fixed address",
			Keys: []descriptor.KeyField{
				{Param: "address", Field: "address", Kind: descriptor.KeyAddress, Rename: true},
			},
			References: []descriptor.ReferenceField{spaceReference("ip_space")},
			Payload: []descriptor.PayloadField{
				optional("name"),
				comment(),
				optional("match_type"),
				optional("match_value"),
			},
			Allocation: &descriptor.Allocation{
				Kind:             descriptor.NextAvailableIP,
				KeyParam:         "address",
				ParentCollection: "ipam/subnet",
				ParentParam:      "subnet",
				Endpoint:         "nextavailableip",
				ScopeParam:       "space",
				ScopeField:       "space",
			},
			Tags: true,
		},
		{
			Type:        "dhcp_option_space",
			Collection:  "dhcp/option_space",
			Description: "DHCP option space",
			Keys:        []descriptor.KeyField{nameKey()},
			Payload:     []descriptor.PayloadField{comment(), passthrough("protocol")},
			Tags:        true,
		},
		{
			Type:        "dhcp_option_code",
			Collection:  "dhcp/option_code",
			Description: "DHCP option code",
			Keys:        []descriptor.KeyField{nameKey()},
			References: []descriptor.ReferenceField{{
				Param:    "option_space",
				Field:    "option_space",
				Targets:  optionSpaceTargets,
				Key:      true,
				Required: true,
			}},
			Payload: []descriptor.PayloadField{
				passthrough("code"),
				passthrough("type"),
				optional("comment"),
			},
		},
		{
			Type:        "dhcp_option_group",
			Collection:  "dhcp/option_group",
			Description: "DHCP option group",
			Keys:        []descriptor.KeyField{nameKey()},
			Payload:     []descriptor.PayloadField{comment()},
			Tags:        true,
		},
		{
			Type:        "dhcp_host",
			Collection:  "dhcp/host",
			Description: "DHCP server (read-only)",
			Keys:        []descriptor.KeyField{{Param: "name", Field: "name", Kind: descriptor.KeyName}},
			ReadOnly:    true,
		},
		{
			Type:        "dhcp_ha_group",
			Collection:  "dhcp/ha_group",
			Description: "DHCP HA group (read-only)",
			Keys:        []descriptor.KeyField{{Param: "name", Field: "name", Kind: descriptor.KeyName}},
			ReadOnly:    true,
		},
	}
}
