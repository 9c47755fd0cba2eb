package parser

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/util"
)

// CmdShowARP is the IOS command whose output ParseARP reads.
const CmdShowARP = "show ip arp"

// Protocol  Address          Age (min)  Hardware Addr   Type   Interface
// Internet  10.82.250.129           -   0000.0c9f.f002  ARPA   GigabitEthernet0/3.2335
var arpLine = regexp.MustCompile(`^Internet\s+(\S+)\s+(?:\d+|-)\s+(\S+)\s+ARPA\s+(\S+)\s*$`)

// ParseARP parses "show ip arp". Incomplete entries have no interface column
// and are dropped.
func ParseARP(lines []string, log logrus.FieldLogger) (NeighborTable, Stats) {
	log = util.OrDiscard(log).WithField("parser", "arp")
	table := make(NeighborTable)
	st := scan(lines, arpLine, log, neighborExtractor(4, 1, 2, 3), func(e Entry) {
		table.add(e, log)
	})
	return table, st
}
