// Package snmp is the protocol-based fallback used when a device cannot be
// read over its CLI. It walks the standard IP-MIB, IF-MIB and BRIDGE-MIB
// tables and returns them in the same unvalidated form the text parsers
// produce, so both paths share one validator.
package snmp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/config"
	"github.com/newtron-network/newtscrape/pkg/ifname"
	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/parser"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// Walked tables.
const (
	OIDIfName                     = "1.3.6.1.2.1.31.1.1.1.1"
	OIDIPNetToMediaPhysAddress    = "1.3.6.1.2.1.4.22.1.2"
	OIDIPNetToPhysicalPhysAddress = "1.3.6.1.2.1.4.35.1.4"
	OIDDot1dTpFdbPort             = "1.3.6.1.2.1.17.4.3.1.2"
	OIDDot1dTpFdbStatus           = "1.3.6.1.2.1.17.4.3.1.3"
	OIDDot1dBasePortIfIndex       = "1.3.6.1.2.1.17.1.4.1.2"
)

// dot1dTpFdbStatus learned(3).
const fdbStatusLearned = 3

// InetAddressType values used in ipNetToPhysicalTable indexes.
const (
	inetAddressIPv4 = 1
	inetAddressIPv6 = 2
)

// Collector walks a device over SNMP. One connection is opened per fetch.
type Collector struct {
	opts      config.SNMPOptions
	newClient func() gosnmp.Handler
	log       logrus.FieldLogger
}

// New creates a collector. A disabled configuration yields a collector that
// always reports util.ErrNoResult.
func New(opts config.SNMPOptions, log logrus.FieldLogger) *Collector {
	return &Collector{
		opts:      opts,
		newClient: gosnmp.NewHandler,
		log:       util.OrDiscard(log).WithField("source", string(model.SourceSNMP)),
	}
}

// FetchNeighbors returns the ARP (version 4) or ND (version 6) table keyed
// by interface name.
func (c *Collector) FetchNeighbors(ctx context.Context, dev model.Device, version int) (parser.NeighborTable, error) {
	client, err := c.connect(dev)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	names, err := c.ifNames(ctx, client)
	if err != nil {
		return nil, err
	}

	table := make(parser.NeighborTable)
	var oid string
	if version == 4 {
		oid = OIDIPNetToMediaPhysAddress
	} else {
		oid = OIDIPNetToPhysicalPhysAddress
	}
	pdus, err := c.walk(ctx, client, oid)
	if err != nil {
		return nil, err
	}
	for _, pdu := range pdus {
		ifIndex, addr, ok := neighborIndex(pdu.Name, oid, version)
		if !ok {
			c.log.WithField("oid", pdu.Name).Debug("skipping neighbor row")
			continue
		}
		name, ok := names[ifIndex]
		if !ok {
			c.log.WithField("if_index", ifIndex).Debug("neighbor on interface without ifName")
			continue
		}
		mac, ok := hardwareAddress(pdu)
		if !ok {
			continue
		}
		m, ok := table[name]
		if !ok {
			m = make(map[netip.Addr]string)
			table[name] = m
		}
		m[addr] = mac
	}
	return table, nil
}

// FetchForwardingTable returns learned MACs keyed by normalized interface
// name.
func (c *Collector) FetchForwardingTable(ctx context.Context, dev model.Device) (parser.ForwardingTable, error) {
	client, err := c.connect(dev)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	names, err := c.ifNames(ctx, client)
	if err != nil {
		return nil, err
	}

	portIfIndex := make(map[int]int)
	pdus, err := c.walk(ctx, client, OIDDot1dBasePortIfIndex)
	if err != nil {
		return nil, err
	}
	for _, pdu := range pdus {
		port, ok := lastArc(pdu.Name)
		if !ok {
			continue
		}
		portIfIndex[port] = int(gosnmp.ToBigInt(pdu.Value).Int64())
	}

	status := make(map[string]int)
	pdus, err = c.walk(ctx, client, OIDDot1dTpFdbStatus)
	if err != nil {
		return nil, err
	}
	for _, pdu := range pdus {
		status[strings.TrimPrefix(trimOID(pdu.Name), OIDDot1dTpFdbStatus+".")] = int(gosnmp.ToBigInt(pdu.Value).Int64())
	}

	pdus, err = c.walk(ctx, client, OIDDot1dTpFdbPort)
	if err != nil {
		return nil, err
	}
	table := make(parser.ForwardingTable)
	for _, pdu := range pdus {
		index := strings.TrimPrefix(trimOID(pdu.Name), OIDDot1dTpFdbPort+".")
		if st, ok := status[index]; ok && st != fdbStatusLearned {
			continue
		}
		mac, ok := macFromIndex(index)
		if !ok {
			continue
		}
		ifIndex, ok := portIfIndex[int(gosnmp.ToBigInt(pdu.Value).Int64())]
		if !ok {
			continue
		}
		name, ok := names[ifIndex]
		if !ok {
			continue
		}
		name = ifname.Normalize(name)
		m, ok := table[name]
		if !ok {
			m = make(map[string]struct{})
			table[name] = m
		}
		m[mac] = struct{}{}
	}
	return table, nil
}

func (c *Collector) connect(dev model.Device) (gosnmp.Handler, error) {
	if !c.opts.Enabled {
		return nil, fmt.Errorf("snmp disabled: %w", util.ErrNoResult)
	}
	client := c.newClient()
	if err := configure(client, dev.Hostname, c.opts); err != nil {
		return nil, util.NewConfigError("snmp", "%v", err)
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s: %w", dev.Hostname, err)
	}
	c.log.WithField("device", dev.Hostname).Debug(connInfo(client))
	return client, nil
}

func (c *Collector) walk(ctx context.Context, client gosnmp.Handler, oid string) ([]gosnmp.SnmpPDU, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var pdus []gosnmp.SnmpPDU
	var err error
	if client.Version() == gosnmp.Version1 {
		pdus, err = client.WalkAll(oid)
	} else {
		pdus, err = client.BulkWalkAll(oid)
	}
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", oid, err)
	}
	return pdus, nil
}

func (c *Collector) ifNames(ctx context.Context, client gosnmp.Handler) (map[int]string, error) {
	pdus, err := c.walk(ctx, client, OIDIfName)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(pdus))
	for _, pdu := range pdus {
		idx, ok := lastArc(pdu.Name)
		if !ok {
			continue
		}
		if b, ok := pdu.Value.([]byte); ok && len(b) > 0 {
			names[idx] = string(b)
		}
	}
	return names, nil
}

// neighborIndex decodes the row index of an ARP or ND table entry.
//
//	ipNetToMediaPhysAddress.<ifIndex>.<a>.<b>.<c>.<d>
//	ipNetToPhysicalPhysAddress.<ifIndex>.<type>.<len>.<octets...>
func neighborIndex(name, oid string, version int) (int, netip.Addr, bool) {
	arcs, ok := arcsAfter(name, oid)
	if !ok || len(arcs) < 2 {
		return 0, netip.Addr{}, false
	}
	ifIndex := arcs[0]
	arcs = arcs[1:]

	if oid == OIDIPNetToPhysicalPhysAddress {
		if len(arcs) < 2 {
			return 0, netip.Addr{}, false
		}
		typ, n := arcs[0], arcs[1]
		arcs = arcs[2:]
		want := inetAddressIPv4
		if version == 6 {
			want = inetAddressIPv6
		}
		if typ != want || n != len(arcs) {
			return 0, netip.Addr{}, false
		}
	}

	octets := make([]byte, len(arcs))
	for i, a := range arcs {
		if a < 0 || a > 255 {
			return 0, netip.Addr{}, false
		}
		octets[i] = byte(a)
	}
	addr, ok := netip.AddrFromSlice(octets)
	if !ok || util.IPVersion(addr) != version {
		return 0, netip.Addr{}, false
	}
	return ifIndex, addr.Unmap(), true
}

func hardwareAddress(pdu gosnmp.SnmpPDU) (string, bool) {
	b, ok := pdu.Value.([]byte)
	if !ok || len(b) != 6 {
		return "", false
	}
	return net.HardwareAddr(b).String(), true
}

// macFromIndex decodes the six decimal arcs of a dot1dTpFdb index.
func macFromIndex(index string) (string, bool) {
	parts := strings.Split(index, ".")
	if len(parts) != 6 {
		return "", false
	}
	hw := make(net.HardwareAddr, 6)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 255 {
			return "", false
		}
		hw[i] = byte(v)
	}
	return hw.String(), true
}

func trimOID(name string) string {
	return strings.TrimPrefix(name, ".")
}

func arcsAfter(name, oid string) ([]int, bool) {
	rest := strings.TrimPrefix(trimOID(name), oid+".")
	if rest == trimOID(name) {
		return nil, false
	}
	parts := strings.Split(rest, ".")
	arcs := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		arcs[i] = v
	}
	return arcs, true
}

func lastArc(name string) (int, bool) {
	name = trimOID(name)
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return 0, false
	}
	v, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, false
	}
	return v, true
}
