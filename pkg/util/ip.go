package util

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// IPVersion returns 4 or 6 for a valid address, 0 otherwise.
// IPv4-mapped IPv6 addresses count as 4.
func IPVersion(addr netip.Addr) int {
	switch {
	case !addr.IsValid():
		return 0
	case addr.Unmap().Is4():
		return 4
	default:
		return 6
	}
}

// ParseIP parses a textual address as printed by device CLIs, accepting
// upper-case IPv6 and stripping a zone suffix ("FE80::1%Gi0/1").
func ParseIP(s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '%'); i >= 0 {
		s = s[:i]
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid IP address: %q", s)
	}
	return addr.Unmap(), nil
}

// IsIPv6LinkLocal reports whether addr is an IPv6 link-local unicast
// address (fe80::/10).
func IsIPv6LinkLocal(addr netip.Addr) bool {
	return addr.Is6() && !addr.Is4In6() && addr.IsLinkLocalUnicast()
}

// PrefixesContain reports whether any prefix contains addr.
func PrefixesContain(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// MostSpecific returns the longest prefix containing addr.
func MostSpecific(prefixes []netip.Prefix, addr netip.Addr) (netip.Prefix, bool) {
	var best netip.Prefix
	found := false
	for _, p := range prefixes {
		if !p.Contains(addr) {
			continue
		}
		if !found || p.Bits() > best.Bits() {
			best = p
			found = true
		}
	}
	return best, found
}

// CanonicalMAC validates a hardware address in any of the common notations
// (0000.0c9f.f002, 00-00-0C-9F-F0-02, 00:00:0c:9f:f0:02) and returns it
// colon-separated in lower case. Only 48-bit addresses are accepted.
func CanonicalMAC(raw string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid hardware address %q: %w", raw, err)
	}
	if len(hw) != 6 {
		return "", fmt.Errorf("invalid hardware address %q: %d octets, want 6", raw, len(hw))
	}
	return hw.String(), nil
}
