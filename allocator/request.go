package allocator

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/resource/identity"
)

// Request asks for Count free children of width CIDR under Parent. For
// next-available-ip, Parent is the subnet and CIDR and Count do not apply.
type Request struct {
	Kind    descriptor.AllocationKind
	Parent  netip.Prefix
	CIDR    int
	Count   int
	Name    string
	Comment string
	// Scope narrows the parent lookup, e.g. to one IP space.
	Scope []filter.Term
}

// Detect reports whether raw carries the allocation directive of alloc and,
// when it does, parses it. A directive that cannot be read is a
// ValidationError.
func Detect(alloc descriptor.Allocation, raw any) (Request, bool, error) {
	directive, present, err := directiveOf(alloc.Marker(), raw)
	if err != nil || !present {
		return Request{}, present, err
	}

	request := Request{Kind: alloc.Kind, Count: 1}

	parentText, ok := resource.ScalarString(directive[alloc.ParentParam])
	if !ok || parentText == "" {
		return Request{}, true, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("%s requires %q", alloc.Marker(), alloc.ParentParam),
			ErrInvalidCidrOrCount,
		)
	}
	parent, err := ParsePrefix(parentText)
	if err != nil {
		return Request{}, true, err
	}
	request.Parent = parent

	if alloc.Single() {
		return request, true, nil
	}

	cidr, err := positiveInt(directive, "cidr", true)
	if err != nil {
		return Request{}, true, err
	}
	if cidr < 1 || cidr > 32 {
		return Request{}, true, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("cidr %d is out of range", cidr),
			ErrInvalidCidrOrCount,
		)
	}
	request.CIDR = cidr

	count, err := positiveInt(directive, "count", false)
	if err != nil {
		return Request{}, true, err
	}
	if count > 0 {
		request.Count = count
	}
	return request, true, nil
}

func directiveOf(marker string, raw any) (map[string]any, bool, error) {
	var envelope map[string]any
	switch typed := raw.(type) {
	case map[string]any:
		envelope = typed
	case resource.Params:
		envelope = map[string]any(typed)
	case string:
		if !strings.Contains(typed, marker) {
			return nil, false, nil
		}
		decoded, err := identity.DecodeStructured(strings.TrimSpace(typed))
		if err != nil {
			return nil, true, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("invalid %s directive", marker),
				err,
			)
		}
		envelope = decoded
	default:
		return nil, false, nil
	}

	value, exists := envelope[marker]
	if !exists {
		return nil, false, nil
	}
	directive, ok := value.(map[string]any)
	if !ok {
		return nil, true, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("%s must be a mapping", marker),
			nil,
		)
	}
	return directive, true, nil
}

func positiveInt(values map[string]any, key string, required bool) (int, error) {
	text, ok := resource.ScalarString(values[key])
	if !ok || text == "" {
		if required {
			return 0, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("%q is required", key), ErrInvalidCidrOrCount)
		}
		return 0, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil || value < 1 {
		return 0, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("%q must be a positive integer, got %q", key, text),
			ErrInvalidCidrOrCount,
		)
	}
	return value, nil
}

// ParsePrefix reads an IPv4 `a.b.c.d/n` prefix. The address must be the
// network address.
func ParsePrefix(value string) (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(value))
	if err != nil {
		return netip.Prefix{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("invalid prefix %q, expected a.b.c.d/n", value),
			err,
		)
	}
	if !prefix.Addr().Is4() {
		return netip.Prefix{}, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("prefix %q is not IPv4", value), nil)
	}
	if prefix.Masked() != prefix {
		return netip.Prefix{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("prefix %q is not a network address, expected %s", value, prefix.Masked()),
			nil,
		)
	}
	return prefix, nil
}

// ParseAddress reads a bare IPv4 address.
func ParseAddress(value string) (netip.Addr, error) {
	address, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil || !address.Is4() {
		return netip.Addr{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("invalid address %q, expected a.b.c.d", value),
			err,
		)
	}
	return address, nil
}
