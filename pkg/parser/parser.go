// Package parser turns the text output of device show commands into
// unvalidated tables. Each command family has its own grammar; lines that do
// not fit the grammar are dropped and logged at debug level, never treated
// as errors.
package parser

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/util"
)

// Entry is one row extracted from command output.
type Entry struct {
	Interface       string
	Address         netip.Addr
	HardwareAddress string
}

// NeighborTable maps raw interface name -> IP address -> hardware address
// as printed by the device.
type NeighborTable map[string]map[netip.Addr]string

// ForwardingTable maps normalized interface name -> set of hardware
// addresses as printed by the device.
type ForwardingTable map[string]map[string]struct{}

// Stats counts what a parser did with its input. Lines excludes the header
// and blank lines.
type Stats struct {
	Lines   int
	Matched int
	Dropped int
}

// Len returns the number of (interface, address) entries.
func (t NeighborTable) Len() int {
	n := 0
	for _, m := range t {
		n += len(m)
	}
	return n
}

// Len returns the number of (interface, hardware address) pairs.
func (t ForwardingTable) Len() int {
	n := 0
	for _, m := range t {
		n += len(m)
	}
	return n
}

// add inserts e. A repeated (interface, address) key overwrites the earlier
// value: devices print a stale row before the refreshed one.
func (t NeighborTable) add(e Entry, log logrus.FieldLogger) {
	m, ok := t[e.Interface]
	if !ok {
		m = make(map[netip.Addr]string)
		t[e.Interface] = m
	}
	if prev, dup := m[e.Address]; dup && prev != e.HardwareAddress {
		log.WithFields(logrus.Fields{
			"interface": e.Interface,
			"address":   e.Address.String(),
			"previous":  prev,
			"current":   e.HardwareAddress,
		}).Debug("duplicate neighbor entry, keeping last")
	}
	m[e.Address] = e.HardwareAddress
}

func (t ForwardingTable) add(ifName, mac string) {
	m, ok := t[ifName]
	if !ok {
		m = make(map[string]struct{})
		t[ifName] = m
	}
	m[mac] = struct{}{}
}

// lineFunc extracts an entry from one regex match. ok=false drops the line
// with reason.
type lineFunc func(m []string) (e Entry, reason string, ok bool)

// scan applies pattern to every line after the header and hands matches to
// extract.
func scan(lines []string, pattern *regexp.Regexp, log logrus.FieldLogger, extract lineFunc, emit func(Entry)) Stats {
	var st Stats
	if len(lines) == 0 {
		return st
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		st.Lines++
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			st.Dropped++
			log.WithField("line", line).Debug("line does not match")
			continue
		}
		e, reason, ok := extract(m)
		if !ok {
			st.Dropped++
			log.WithFields(logrus.Fields{"line": line, "reason": reason}).Debug("line dropped")
			continue
		}
		st.Matched++
		emit(e)
	}
	return st
}

// neighborExtractor builds the lineFunc shared by the ARP and ND parsers.
// Submatch indexes are given for the address, hardware address and
// interface columns.
func neighborExtractor(version, addrIdx, macIdx, ifIdx int) lineFunc {
	return func(m []string) (Entry, string, bool) {
		ifName := strings.TrimSpace(m[ifIdx])
		mac := strings.TrimSpace(m[macIdx])
		if ifName == "" || mac == "" || strings.TrimSpace(m[addrIdx]) == "" {
			return Entry{}, "empty field", false
		}
		addr, err := util.ParseIP(m[addrIdx])
		if err != nil {
			return Entry{}, err.Error(), false
		}
		if util.IPVersion(addr) != version {
			return Entry{}, "wrong address family", false
		}
		return Entry{Interface: ifName, Address: addr, HardwareAddress: mac}, "", true
	}
}
