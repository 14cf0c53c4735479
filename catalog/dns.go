package catalog

import "github.com/crmarques/ddiconf/descriptor"

func dnsDescriptors() []descriptor.Descriptor {
	return []descriptor.Descriptor{
		{
			Type:        "dns_view",
			Collection:  "dns/view",
			Description: "DNS view",
			Keys:        []descriptor.KeyField{nameKey()},
			Payload:     []descriptor.PayloadField{comment()},
			Tags:        true,
		},
		{
			Type:        "dns_auth_zone",
			Collection:  "dns/auth_zone",
			Description: "authoritative DNS zone",
			Keys: []descriptor.KeyField{
				{Param: "fqdn", Field: "fqdn", Kind: descriptor.KeyName, Rename: true},
			},
			References: []descriptor.ReferenceField{
				{Param: "view", Field: "view", Targets: dnsViewTargets, Key: true, Required: true},
				{Param: "internal_secondaries", Field: "internal_secondaries", Targets: dnsHostTargets, List: true, Wrap: "host"},
			},
			Payload: []descriptor.PayloadField{
				optional("primary_type"),
				comment(),
				passthrough("external_primaries"),
			},
			Tags: true,
		},
		recordDescriptor("dns_record_a", "A", "address", "rdata.address"),
		recordDescriptor("dns_record_cname", "CNAME", "cname", "rdata.cname"),
		recordDescriptor("dns_record_ns", "NS", "dname", "rdata.dname"),
		recordDescriptor("dns_record_ptr", "PTR", "dname", "rdata.dname"),
		{
			Type:        "dns_host",
			Collection:  "dns/host",
			Description: "DNS server (read-only)",
			Keys:        []descriptor.KeyField{{Param: "name", Field: "name", Kind: descriptor.KeyName}},
			ReadOnly:    true,
		},
	}
}

// recordDescriptor describes one record type of the shared dns/record
// collection, named inside its zone and scoped by type.
func recordDescriptor(resourceType, recordType, rdataParam, rdataField string) descriptor.Descriptor {
	return descriptor.Descriptor{
		Type:        resourceType,
		Collection:  "dns/record",
		Description: recordType + " record",
		Keys: []descriptor.KeyField{
			{Param: "name_in_zone", Field: "name_in_zone", Kind: descriptor.KeyName, Rename: true},
		},
		References: []descriptor.ReferenceField{
			{Param: "zone", Field: "zone", Targets: authZoneTargets, Key: true, Required: true},
		},
		Payload: []descriptor.PayloadField{
			{Param: rdataParam, Field: rdataField},
			comment(),
		},
		Constants: map[string]string{"type": recordType},
		Tags:      true,
	}
}
