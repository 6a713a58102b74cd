// Package types holds small value types shared across store/records, ipam,
// and audit: a validated IPv4 address, a validated CIDR block, and a
// content digest. Kept separate from net/netip, which ipam already uses
// directly for address arithmetic, so these stay focused on the one thing
// the other packages need from them: parsing a flat-file string field and
// reporting whether it's well-formed.
package types

import (
	"fmt"
	"net/netip"
)

// IPv4 is a validated dotted-quad address.
type IPv4 struct {
	addr netip.Addr
}

// ParseIPv4 parses s as a dotted-quad IPv4 address.
func ParseIPv4(s string) (IPv4, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return IPv4{}, fmt.Errorf("parse ipv4 %q: %w", s, err)
	}
	if !addr.Is4() {
		return IPv4{}, fmt.Errorf("parse ipv4 %q: not an IPv4 address", s)
	}
	return IPv4{addr: addr}, nil
}

func (ip IPv4) String() string { return ip.addr.String() }

// CIDR is a validated network prefix, e.g. "10.1.0.0/24".
type CIDR struct {
	prefix netip.Prefix
}

// ParseCIDR parses s as an IPv4 CIDR block.
func ParseCIDR(s string) (CIDR, error) {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return CIDR{}, fmt.Errorf("parse cidr %q: %w", s, err)
	}
	if !prefix.Addr().Is4() {
		return CIDR{}, fmt.Errorf("parse cidr %q: not an IPv4 prefix", s)
	}
	return CIDR{prefix: prefix.Masked()}, nil
}

func (c CIDR) String() string   { return c.prefix.String() }
func (c CIDR) Bits() int        { return c.prefix.Bits() }
func (c CIDR) Contains(ip IPv4) bool {
	return c.prefix.Contains(ip.addr)
}
