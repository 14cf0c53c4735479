package catalog

import "github.com/crmarques/ddiconf/descriptor"

func ipamDescriptors() []descriptor.Descriptor {
	return []descriptor.Descriptor{
		{
			Type:        "ipam_ip_space",
			Collection:  "ipam/ip_space",
			Description: "IP space",
			Keys:        []descriptor.KeyField{nameKey()},
			Payload:     []descriptor.PayloadField{comment()},
			Tags:        true,
		},
		{
			Type:        "ipam_address_block",
			Collection:  "ipam/address_block",
			Description: "address block",
			Keys: []descriptor.KeyField{
				{Param: "address", Field: "address", Kind: descriptor.KeyPrefix, Rename: true},
			},
			References: []descriptor.ReferenceField{spaceReference("space")},
			Payload: []descriptor.PayloadField{
				{Param: "name", Field: "name", Default: "", AlwaysSend: true},
				comment(),
			},
			Allocation: &descriptor.Allocation{
				Kind:             descriptor.NextAvailableAddressBlock,
				KeyParam:         "address",
				ParentCollection: "ipam/address_block",
				ParentParam:      "parent_block",
				Endpoint:         "nextavailableaddressblock",
				ScopeParam:       "space",
				ScopeField:       "space",
			},
			Tags: true,
		},
		{
			Type:        "ipam_subnet",
			Collection:  "ipam/subnet",
			Description: "subnet",
			Keys: []descriptor.KeyField{
				{Param: "address", Field: "address", Kind: descriptor.KeyPrefix, Rename: true},
			},
			References: []descriptor.ReferenceField{
				spaceReference("space"),
				dhcpHostReference(),
			},
			Payload: []descriptor.PayloadField{optional("name"), optional("comment")},
			Allocation: &descriptor.Allocation{
				Kind:             descriptor.NextAvailableSubnet,
				KeyParam:         "address",
				ParentCollection: "ipam/address_block",
				ParentParam:      "parent_block",
				Endpoint:         "nextavailablesubnet",
				ScopeParam:       "space",
				ScopeField:       "space",
			},
			Tags:         true,
			DHCPOptions:  true,
			RouterTokens: true,
		},
		{
			Type:        "ipam_range",
			Collection:  "ipam/range",
			Description: "DHCP range",
			Keys: []descriptor.KeyField{
				{Param: "start", Field: "start", Kind: descriptor.KeyAddress, Rename: true},
				{Param: "end", Field: "end", Kind: descriptor.KeyAddress, Rename: true},
			},
			References: []descriptor.ReferenceField{
				spaceReference("space"),
				dhcpHostReference(),
			},
			Payload: []descriptor.PayloadField{
				{Param: "name", Field: "name", Default: "", AlwaysSend: true},
				comment(),
			},
			Tags: true,
		},
		{
			Type:        "ipam_address",
			Collection:  "ipam/address",
			Description: "IPv4 reservation",
			Keys: []descriptor.KeyField{
				{Param: "address", Field: "address", Kind: descriptor.KeyAddress, Rename: true},
			},
			References: []descriptor.ReferenceField{spaceReference("space")},
			Payload: []descriptor.PayloadField{
				{Param: "name", Field: "names", Names: true, Default: []any{}},
				comment(),
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
			Type:        "ipam_host",
			Collection:  "ipam/host",
			Description: "IPAM host",
			Keys:        []descriptor.KeyField{nameKey()},
			References: []descriptor.ReferenceField{{
				Param:   "addresses",
				Field:   "addresses",
				Targets: ipSpaceTargets,
				Item:    "space",
			}},
			Payload: []descriptor.PayloadField{comment()},
			Tags:    true,
		},
	}
}
