package parser

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/util"
)

// CmdShowIPv6Neighbors is the IOS command whose output ParseIPv6Neighbors
// reads.
const CmdShowIPv6Neighbors = "show ipv6 neighbors"

// IPv6 Address                              Age Link-layer Addr State Interface
// 2001:DB8::1                                 0 0000.0c9f.f002  REACH Gi0/3.2335
var ndLine = regexp.MustCompile(`^(\S+)\s+(?:\d+|-)\s+(\S+)\s+\S+\s+(\S+)\s*$`)

// ParseIPv6Neighbors parses "show ipv6 neighbors". Rows whose first column
// is not an IPv6 address are dropped.
func ParseIPv6Neighbors(lines []string, log logrus.FieldLogger) (NeighborTable, Stats) {
	log = util.OrDiscard(log).WithField("parser", "ipv6-neighbors")
	table := make(NeighborTable)
	st := scan(lines, ndLine, log, neighborExtractor(6, 1, 2, 3), func(e Entry) {
		table.add(e, log)
	})
	return table, st
}
