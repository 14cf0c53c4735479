package catalog

import (
	"testing"

	"github.com/crmarques/ddiconf/descriptor"
)

func TestEveryDescriptorValidates(t *testing.T) {
	t.Parallel()

	for _, desc := range All() {
		t.Run(desc.Type, func(t *testing.T) {
			t.Parallel()

			if err := desc.Validate(); err != nil {
				t.Fatalf("descriptor %q is invalid: %v", desc.Type, err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	desc, ok := Lookup("ipam-subnet")
	if !ok {
		t.Fatal("expected dashed type name to resolve")
	}
	if desc.Collection != "ipam/subnet" {
		t.Fatalf("unexpected collection %q", desc.Collection)
	}
	if desc.Allocation == nil || desc.Allocation.Kind != descriptor.NextAvailableSubnet {
		t.Fatalf("expected subnet allocation, got %#v", desc.Allocation)
	}

	if _, ok := Lookup("ipam_nothing"); ok {
		t.Fatal("expected unknown type to be missing")
	}
}

func TestRecordDescriptorsShareCollection(t *testing.T) {
	t.Parallel()

	expected := map[string]string{
		"dns_record_a":     "A",
		"dns_record_cname": "CNAME",
		"dns_record_ns":    "NS",
		"dns_record_ptr":   "PTR",
	}
	for resourceType, recordType := range expected {
		desc, ok := Lookup(resourceType)
		if !ok {
			t.Fatalf("missing %s", resourceType)
		}
		if desc.Collection != "dns/record" {
			t.Fatalf("%s: unexpected collection %q", resourceType, desc.Collection)
		}
		if desc.Constants["type"] != recordType {
			t.Fatalf("%s: expected type constant %q, got %q", resourceType, recordType, desc.Constants["type"])
		}
	}
}

func TestTypesAreSorted(t *testing.T) {
	t.Parallel()

	types := Types()
	if len(types) != len(All()) {
		t.Fatalf("expected %d types, got %d", len(All()), len(types))
	}
	for idx := 1; idx < len(types); idx++ {
		if types[idx-1] >= types[idx] {
			t.Fatalf("types are not sorted: %q before %q", types[idx-1], types[idx])
		}
	}
}
