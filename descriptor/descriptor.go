// Package descriptor models the static definition of one remote resource
// type: where it lives, how it is identified and which payload fields name
// other resources.
package descriptor

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/resource/identity"
)

type KeyKind string

const (
	// KeyName is a free-form name matched verbatim.
	KeyName KeyKind = "name"
	// KeyPrefix is an `a.b.c.d/n` value split into address and cidr fields.
	KeyPrefix KeyKind = "prefix"
	// KeyAddress is a bare IPv4 address.
	KeyAddress KeyKind = "address"
)

type AmbiguityPolicy string

const (
	TakeFirst        AmbiguityPolicy = "take-first"
	ErrorOnAmbiguous AmbiguityPolicy = "error"
)

// KeyField is one natural-key field. Param is the caller parameter, Field the
// remote attribute used both in the lookup filter and the payload.
type KeyField struct {
	Param    string  `validate:"required"`
	Field    string  `validate:"required"`
	Kind     KeyKind `validate:"required,oneof=name prefix address"`
	Rename   bool
	Optional bool
}

// RenameKeys returns the marker pair a rename directive for this key uses.
func (k KeyField) RenameKeys() identity.Keys {
	if k.Kind == KeyName {
		return identity.NameKeys
	}
	return identity.AddressKeys
}

// Target is one collection a reference may resolve against.
type Target struct {
	Collection  string `validate:"required"`
	LookupField string `validate:"required"`
}

// ReferenceField is a payload field whose caller value is a human-readable
// name translated to a platform id before submission.
type ReferenceField struct {
	Param string `validate:"required"`
	Field string `validate:"required"`
	// Targets are tried in order; the first one with a match wins.
	Targets []Target `validate:"required,min=1,dive"`
	// Key adds the resolved id to the natural-key lookup filter.
	Key      bool
	Required bool
	// List resolves every element of a list parameter.
	List bool
	// Wrap sends each resolved id as {Wrap: id} instead of the bare id.
	Wrap string
	// Item resolves the named attribute inside each object of a list
	// parameter rather than the parameter itself.
	Item string
}

// PayloadField copies a caller parameter into the payload. Field may be a
// dotted path for nested attributes.
type PayloadField struct {
	Param string `validate:"required"`
	Field string `validate:"required"`
	// Default is sent on create when the caller omitted the parameter.
	// AlwaysSend resends it on update as well.
	AlwaysSend bool
	Default    any
	// Names wraps a scalar as [{name: value, type: user}].
	Names bool
}

type AllocationKind string

const (
	NextAvailableSubnet       AllocationKind = "next_available_subnet"
	NextAvailableAddressBlock AllocationKind = "next_available_address_block"
	NextAvailableIP           AllocationKind = "next_available_ip"
)

// Allocation describes the next-available endpoint reachable from the key
// parameter. Marker is the key of the structured directive carried by that
// parameter.
type Allocation struct {
	Kind             AllocationKind `validate:"required"`
	KeyParam         string         `validate:"required"`
	ParentCollection string         `validate:"required"`
	// ParentParam is the attribute of the directive naming the parent prefix.
	ParentParam string `validate:"required"`
	Endpoint    string `validate:"required"`
	// ScopeParam names the reference whose resolved id narrows the parent
	// lookup to ScopeField, e.g. the IP space.
	ScopeParam string
	ScopeField string `validate:"required_with=ScopeParam"`
}

func (a Allocation) Marker() string {
	return string(a.Kind)
}

// Single reports whether the allocation yields one address that the normal
// create path then submits.
func (a Allocation) Single() bool {
	return a.Kind == NextAvailableIP
}

type Descriptor struct {
	Type        string `validate:"required"`
	Collection  string `validate:"required"`
	Description string
	Keys        []KeyField       `validate:"dive"`
	References  []ReferenceField `validate:"dive"`
	Payload     []PayloadField   `validate:"dive"`
	// Constants are added to every lookup filter and every create payload.
	Constants   map[string]string
	Allocation  *Allocation
	Ambiguity   AmbiguityPolicy `validate:"omitempty,oneof=take-first error"`
	Tags        bool
	DHCPOptions bool
	// RouterTokens enables the first/last router substitution in DHCP
	// option values.
	RouterTokens bool
	ReadOnly     bool
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the descriptor is internally consistent.
func (d Descriptor) Validate() error {
	if err := structValidator.Struct(d); err != nil {
		return faults.NewTypedError(faults.ValidationError, fmt.Sprintf("descriptor %q is invalid", d.Type), err)
	}
	if !d.ReadOnly && len(d.Keys) == 0 {
		return faults.NewTypedError(faults.ValidationError, fmt.Sprintf("descriptor %q has no natural key", d.Type), nil)
	}
	seen := map[string]bool{}
	for _, key := range d.Keys {
		if seen[key.Param] {
			return faults.NewTypedError(faults.ValidationError, fmt.Sprintf("descriptor %q repeats key %q", d.Type, key.Param), nil)
		}
		seen[key.Param] = true
	}
	if d.Allocation != nil {
		if _, ok := d.Key(d.Allocation.KeyParam); !ok {
			return faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("descriptor %q allocates through unknown key %q", d.Type, d.Allocation.KeyParam),
				nil,
			)
		}
		if scope := d.Allocation.ScopeParam; scope != "" {
			if _, ok := d.Reference(scope); !ok {
				return faults.NewTypedError(
					faults.ValidationError,
					fmt.Sprintf("descriptor %q scopes allocation through unknown reference %q", d.Type, scope),
					nil,
				)
			}
		}
	}
	return nil
}

func (d Descriptor) Key(param string) (KeyField, bool) {
	for _, key := range d.Keys {
		if key.Param == param {
			return key, true
		}
	}
	return KeyField{}, false
}

func (d Descriptor) Reference(param string) (ReferenceField, bool) {
	for _, reference := range d.References {
		if reference.Param == param {
			return reference, true
		}
	}
	return ReferenceField{}, false
}

// KeyReferences returns the references that scope the natural-key lookup.
func (d Descriptor) KeyReferences() []ReferenceField {
	scoped := make([]ReferenceField, 0)
	for _, reference := range d.References {
		if reference.Key {
			scoped = append(scoped, reference)
		}
	}
	return scoped
}

// EffectiveAmbiguity resolves the policy, falling back to fallback and then
// to TakeFirst.
func (d Descriptor) EffectiveAmbiguity(fallback AmbiguityPolicy) AmbiguityPolicy {
	switch {
	case d.Ambiguity != "":
		return d.Ambiguity
	case fallback != "":
		return fallback
	default:
		return TakeFirst
	}
}
