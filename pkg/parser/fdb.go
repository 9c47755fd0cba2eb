package parser

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/ifname"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// CmdShowForwardingTable is the IOS command whose output
// ParseForwardingTable reads.
const CmdShowForwardingTable = "show mac-address-table dynamic"

// Two layouts are in the field:
//
//	  128  0024.b20e.fe0f   dynamic  Yes   255   Gi9/22
//	*  10  0024.b20e.fe0f   dynamic  Yes     0   Po12
//	  10    0024.b20e.fe0f    DYNAMIC     Gi0/1
//
// The port is always the last column.
var fdbLine = regexp.MustCompile(`(?i)^\s*\*?\s*(?:\d+|-)\s+([0-9a-f]{4}\.[0-9a-f]{4}\.[0-9a-f]{4})\s+dynamic\s+(?:.*\s)?(\S+)\s*$`)

// ParseForwardingTable parses "show mac-address-table dynamic". Interface
// names are normalized so they compare directly against inventory names.
func ParseForwardingTable(lines []string, log logrus.FieldLogger) (ForwardingTable, Stats) {
	log = util.OrDiscard(log).WithField("parser", "fwt")
	table := make(ForwardingTable)
	extract := func(m []string) (Entry, string, bool) {
		mac := strings.TrimSpace(m[1])
		port := ifname.Normalize(m[2])
		if mac == "" || port == "" {
			return Entry{}, "empty field", false
		}
		return Entry{Interface: port, HardwareAddress: mac}, "", true
	}
	st := scan(lines, fdbLine, log, extract, func(e Entry) {
		table.add(e.Interface, e.HardwareAddress)
	})
	return table, st
}
