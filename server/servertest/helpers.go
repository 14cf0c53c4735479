package servertest

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/crmarques/ddiconf/resource"
)

type term struct {
	field string
	value string
}

func objectCollection(id string) string {
	idx := strings.LastIndex(id, "/")
	if idx < 0 {
		return ""
	}
	return id[:idx]
}

func sequenceOf(id string) int {
	idx := strings.LastIndex(id, "/")
	value, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return 0
	}
	return value
}

// parseExpression reads the `field==value and ...` filter syntax.
func parseExpression(raw string) ([]term, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " and ")
	terms := make([]term, 0, len(parts))
	for _, part := range parts {
		field, value, ok := strings.Cut(strings.TrimSpace(part), "==")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid filter term %q", part)
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
			value = quoteUnescaper.Replace(value[1 : len(value)-1])
		}
		terms = append(terms, term{field: strings.TrimSpace(field), value: value})
	}
	return terms, nil
}

var quoteUnescaper = strings.NewReplacer(`\\`, `\`, `\'`, `'`)

func matches(object map[string]any, terms []term) bool {
	for _, item := range terms {
		value, ok := resource.LookupScalarField(object, item.field)
		if !ok || value != item.value {
			return false
		}
	}
	return true
}

func splitFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fields := make([]string, 0)
	for _, field := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return fields
}

func project(object map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return object
	}
	projected := map[string]any{}
	for _, field := range fields {
		if value, ok := object[field]; ok {
			projected[field] = value
		}
	}
	return projected
}

func objectPrefix(object map[string]any) (netip.Prefix, error) {
	address, _ := object["address"].(string)
	cidr, ok := resource.ScalarString(object["cidr"])
	if !ok {
		return netip.Prefix{}, fmt.Errorf("object %q has no cidr", resource.ID(object))
	}
	return netip.ParsePrefix(address + "/" + cidr)
}

func overlapsAny(candidate netip.Prefix, taken []netip.Prefix) bool {
	for _, prefix := range taken {
		if prefix.Overlaps(candidate) {
			return true
		}
	}
	return false
}

func nextPrefix(prefix netip.Prefix) (netip.Prefix, bool) {
	bytes := prefix.Masked().Addr().As4()
	value := binary.BigEndian.Uint32(bytes[:])
	step := uint64(1) << (32 - prefix.Bits())
	next := uint64(value) + step
	if next > 0xFFFFFFFF {
		return netip.Prefix{}, false
	}
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], uint32(next))
	return netip.PrefixFrom(netip.AddrFrom4(out), prefix.Bits()), true
}

func cloneMap(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	cloned := make(map[string]any, len(values))
	for key, value := range values {
		cloned[key] = cloneValue(value)
	}
	return cloned
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		cloned := make([]any, len(typed))
		for idx, item := range typed {
			cloned[idx] = cloneValue(item)
		}
		return cloned
	default:
		return value
	}
}
