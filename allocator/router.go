package allocator

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"github.com/crmarques/ddiconf/faults"
)

const (
	FirstRouter = "first"
	LastRouter  = "last"
)

func IsRouterToken(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case FirstRouter, LastRouter:
		return true
	}
	return false
}

// DeriveRouter maps `first` to the network address plus one and `last` to the
// broadcast address minus two. Only IPv4 subnets of /30 or wider qualify.
func DeriveRouter(subnet netip.Prefix, token string) (string, error) {
	if !subnet.Addr().Is4() {
		return "", faults.NewTypedError(faults.ValidationError, fmt.Sprintf("router derivation requires IPv4, got %s", subnet), nil)
	}
	if subnet.Bits() > 30 {
		return "", faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("router derivation requires a /30 or wider subnet, got %s", subnet),
			nil,
		)
	}

	network := subnet.Masked().Addr().As4()
	base := binary.BigEndian.Uint32(network[:])
	broadcast := base | (^uint32(0) >> subnet.Bits())

	var derived uint32
	switch strings.ToLower(strings.TrimSpace(token)) {
	case FirstRouter:
		derived = base + 1
	case LastRouter:
		derived = broadcast - 2
	default:
		return "", faults.NewTypedError(faults.ValidationError, fmt.Sprintf("unknown router token %q", token), nil)
	}

	var out [4]byte
	binary.BigEndian.PutUint32(out[:], derived)
	return netip.AddrFrom4(out).String(), nil
}
