package model

import (
	"net/netip"
	"sort"
)

// NeighborEntries maps interface id -> IP address -> canonical MAC for one
// IP version.
type NeighborEntries map[int]map[netip.Addr]string

// NeighborCache is keyed by IP version (4 or 6), then interface id, then IP.
// Every entry has a canonical MAC and a known interface id.
type NeighborCache map[int]NeighborEntries

// ForwardingTable maps interface id -> set of canonical MACs.
type ForwardingTable map[int]map[string]struct{}

// Add records an entry, creating intermediate maps as needed.
func (e NeighborEntries) Add(ifID int, addr netip.Addr, mac string) {
	m, ok := e[ifID]
	if !ok {
		m = make(map[netip.Addr]string)
		e[ifID] = m
	}
	m[addr] = mac
}

// Len returns the number of (interface, address) entries.
func (e NeighborEntries) Len() int {
	n := 0
	for _, m := range e {
		n += len(m)
	}
	return n
}

// Len returns the number of entries across all IP versions.
func (c NeighborCache) Len() int {
	n := 0
	for _, e := range c {
		n += e.Len()
	}
	return n
}

// Add records a MAC as seen on an interface.
func (f ForwardingTable) Add(ifID int, mac string) {
	m, ok := f[ifID]
	if !ok {
		m = make(map[string]struct{})
		f[ifID] = m
	}
	m[mac] = struct{}{}
}

// Has reports whether mac was learned on ifID.
func (f ForwardingTable) Has(ifID int, mac string) bool {
	_, ok := f[ifID][mac]
	return ok
}

// Len returns the number of (interface, MAC) pairs.
func (f ForwardingTable) Len() int {
	n := 0
	for _, m := range f {
		n += len(m)
	}
	return n
}

// NeighborRow is one flattened neighbor cache entry.
type NeighborRow struct {
	Version     int    `json:"version"`
	InterfaceID int    `json:"interface_id"`
	IP          string `json:"ip"`
	MAC         string `json:"mac"`
}

// Rows flattens the cache in a stable order (version, interface, address).
func (c NeighborCache) Rows() []NeighborRow {
	var rows []NeighborRow
	for version, entries := range c {
		for ifID, addrs := range entries {
			for addr, mac := range addrs {
				rows = append(rows, NeighborRow{
					Version:     version,
					InterfaceID: ifID,
					IP:          addr.String(),
					MAC:         mac,
				})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		if a.InterfaceID != b.InterfaceID {
			return a.InterfaceID < b.InterfaceID
		}
		return netip.MustParseAddr(a.IP).Less(netip.MustParseAddr(b.IP))
	})
	return rows
}

// ForwardingRow is one flattened forwarding table entry.
type ForwardingRow struct {
	InterfaceID int    `json:"interface_id"`
	MAC         string `json:"mac"`
}

// Rows flattens the table in a stable order (interface, MAC).
func (f ForwardingTable) Rows() []ForwardingRow {
	var rows []ForwardingRow
	for ifID, macs := range f {
		for mac := range macs {
			rows = append(rows, ForwardingRow{InterfaceID: ifID, MAC: mac})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].InterfaceID != rows[j].InterfaceID {
			return rows[i].InterfaceID < rows[j].InterfaceID
		}
		return rows[i].MAC < rows[j].MAC
	})
	return rows
}
