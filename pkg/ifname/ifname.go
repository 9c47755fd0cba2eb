// Package ifname reconciles the interface naming schemes seen on Cisco-style
// devices: full names from the inventory ("GigabitEthernet0/3.2335"),
// two-letter abbreviations from forwarding tables ("Gi0/3") and whatever
// the ARP/ND tables print.
package ifname

import (
	"regexp"
	"strings"
)

// A type prefix of letters (and the occasional hyphen, "Port-channel"),
// optional whitespace, then the numeric path.
var namePattern = regexp.MustCompile(`^([A-Za-z])([A-Za-z])[A-Za-z-]*\s*([0-9][0-9/.:]*)$`)

// Normalize maps every spelling of an interface to one comparable key: the
// first two letters of the type prefix and the trailing numeric path.
//
//	GigabitEthernet0/3.2335 -> Gi0/3.2335
//	Gi9/22                  -> Gi9/22
//	Port-channel12          -> Po12
//
// Names that do not look like type+path are returned trimmed. Normalize is
// idempotent.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return strings.ToUpper(m[1]) + strings.ToLower(m[2]) + m[3]
}

// Equal reports whether two names denote the same interface.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
