package collector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/parser"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// NeighborCollector knows how to read the ARP and ND tables of a platform.
type NeighborCollector interface {
	NeighborCommand(version int) string
	ParseNeighbors(version int, lines []string, log logrus.FieldLogger) (parser.NeighborTable, parser.Stats)
}

// ForwardingTableCollector knows how to read the MAC forwarding table of a
// platform.
type ForwardingTableCollector interface {
	ForwardingTableCommand() string
	ParseForwardingTable(lines []string, log logrus.FieldLogger) (parser.ForwardingTable, parser.Stats)
}

// Platform is the CLI strategy for one vendor operating system.
type Platform interface {
	Name() string
	NeighborCollector
	ForwardingTableCollector
}

// Registry maps device type strings to platforms. Lookups are
// case-insensitive. It is read-only once built.
type Registry struct {
	platforms map[string]Platform
}

// NewRegistry returns a registry with the built-in platforms.
func NewRegistry() *Registry {
	r := &Registry{platforms: make(map[string]Platform)}
	r.Register(CiscoIOS{}, "ios", "cisco_iosxe")
	return r
}

// Register adds p under its name and any aliases.
func (r *Registry) Register(p Platform, aliases ...string) {
	r.platforms[strings.ToLower(p.Name())] = p
	for _, a := range aliases {
		r.platforms[strings.ToLower(a)] = p
	}
}

// Lookup returns the platform for a device type.
func (r *Registry) Lookup(deviceType string) (Platform, error) {
	p, ok := r.platforms[strings.ToLower(strings.TrimSpace(deviceType))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", util.ErrNoPlatform, deviceType)
	}
	return p, nil
}

// Types lists every registered type string, aliases included.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.platforms))
	for t := range r.platforms {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// CiscoIOS is the Cisco IOS / IOS-XE platform.
type CiscoIOS struct{}

func (CiscoIOS) Name() string { return "cisco_ios" }

func (CiscoIOS) NeighborCommand(version int) string {
	if version == 6 {
		return parser.CmdShowIPv6Neighbors
	}
	return parser.CmdShowARP
}

func (CiscoIOS) ParseNeighbors(version int, lines []string, log logrus.FieldLogger) (parser.NeighborTable, parser.Stats) {
	if version == 6 {
		return parser.ParseIPv6Neighbors(lines, log)
	}
	return parser.ParseARP(lines, log)
}

func (CiscoIOS) ForwardingTableCommand() string { return parser.CmdShowForwardingTable }

func (CiscoIOS) ParseForwardingTable(lines []string, log logrus.FieldLogger) (parser.ForwardingTable, parser.Stats) {
	return parser.ParseForwardingTable(lines, log)
}
