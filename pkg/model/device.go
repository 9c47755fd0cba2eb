// Package model defines the device and result types produced by a collection.
package model

import "fmt"

// Device identifies the device a collection runs against.
type Device struct {
	ID       int    `json:"id"`       // Inventory id
	Hostname string `json:"hostname"` // Used for credential lookup and to connect
	Type     string `json:"type"`     // Platform key, e.g. "cisco_ios"
}

func (d Device) String() string {
	if d.Hostname == "" {
		return fmt.Sprintf("device#%d", d.ID)
	}
	return d.Hostname
}

// Kind names a collection type for eligibility checks and metrics.
type Kind string

const (
	KindNeighborCache   Kind = "arp"
	KindForwardingTable Kind = "fwt"
)

// Source records which path produced a result.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceSNMP Source = "snmp"
)
