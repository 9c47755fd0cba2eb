// Package validate decides which parsed entries can be trusted. An entry
// survives only if its interface is a known interface of the device, its
// hardware address is a valid MAC, and, when configured, its address lies
// inside a subnet of that interface. Surviving entries are re-keyed by
// interface id.
package validate

import (
	"context"
	"fmt"
	"net/netip"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/ifname"
	"github.com/newtron-network/newtscrape/pkg/inventory"
	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/parser"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// Validator cross-references parsed tables against the inventory.
type Validator struct {
	Inventory inventory.Store
	// Canonicalize validates a hardware address and returns its canonical
	// form. Defaults to util.CanonicalMAC.
	Canonicalize func(raw string) (string, error)
	// RestrictToSubnets drops neighbors whose address is outside every
	// subnet configured on the interface.
	RestrictToSubnets bool
	Logger            logrus.FieldLogger
}

// New returns a validator using util.CanonicalMAC.
func New(inv inventory.Store, restrictToSubnets bool, log logrus.FieldLogger) *Validator {
	return &Validator{
		Inventory:         inv,
		Canonicalize:      util.CanonicalMAC,
		RestrictToSubnets: restrictToSubnets,
		Logger:            log,
	}
}

// Neighbors validates an ARP (version 4) or ND (version 6) table. Rejected
// entries are logged and counted in the report; an error is returned only
// when the inventory cannot be read.
func (v *Validator) Neighbors(ctx context.Context, deviceID, version int, table parser.NeighborTable) (model.NeighborEntries, *Report, error) {
	log := v.logger(deviceID).WithField("version", version)
	index, err := v.interfaceIndex(ctx, deviceID, log)
	if err != nil {
		return nil, nil, err
	}

	out := make(model.NeighborEntries)
	report := newReport()
	subnets := make(map[int][]netip.Prefix)

	// Sorted so that two spellings of one interface resolve the same way
	// on every run.
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := ifname.Normalize(name)
		ifID, known := index[key]
		for addr, rawMAC := range table[name] {
			rlog := log.WithFields(logrus.Fields{"interface": name, "address": addr.String(), "mac": rawMAC})
			if !known {
				v.rejected(rlog, report, ReasonUnknownInterface)
				continue
			}
			if util.IPVersion(addr) != version {
				v.rejected(rlog, report, ReasonWrongFamily)
				continue
			}
			if util.IsIPv6LinkLocal(addr) {
				v.rejected(rlog, report, ReasonLinkLocal)
				continue
			}
			mac, err := v.canonicalize(rawMAC)
			if err != nil {
				v.rejected(rlog, report, ReasonInvalidMAC)
				continue
			}
			if v.RestrictToSubnets {
				prefixes, ok := subnets[ifID]
				if !ok {
					prefixes, err = v.interfaceSubnets(ctx, ifID, version)
					if err != nil {
						return nil, nil, err
					}
					subnets[ifID] = prefixes
				}
				if !util.PrefixesContain(prefixes, addr) {
					v.rejected(rlog, report, ReasonOutsideSubnet)
					continue
				}
			}
			out.Add(ifID, addr, mac)
			report.Accepted++
		}
	}

	log.WithField("report", report.String()).Debug("neighbor table validated")
	return out, report, nil
}

// ForwardingTable validates a MAC forwarding table.
func (v *Validator) ForwardingTable(ctx context.Context, deviceID int, table parser.ForwardingTable) (model.ForwardingTable, *Report, error) {
	log := v.logger(deviceID)
	index, err := v.interfaceIndex(ctx, deviceID, log)
	if err != nil {
		return nil, nil, err
	}

	out := make(model.ForwardingTable)
	report := newReport()
	for name, macs := range table {
		ifID, known := index[ifname.Normalize(name)]
		for rawMAC := range macs {
			rlog := log.WithFields(logrus.Fields{"interface": name, "mac": rawMAC})
			if !known {
				v.rejected(rlog, report, ReasonUnknownInterface)
				continue
			}
			mac, err := v.canonicalize(rawMAC)
			if err != nil {
				v.rejected(rlog, report, ReasonInvalidMAC)
				continue
			}
			if !out.Has(ifID, mac) {
				out.Add(ifID, mac)
				report.Accepted++
			}
		}
	}

	log.WithField("report", report.String()).Debug("forwarding table validated")
	return out, report, nil
}

// interfaceIndex maps normalized interface names to ids. When two names
// normalize to the same key the lowest id wins.
func (v *Validator) interfaceIndex(ctx context.Context, deviceID int, log logrus.FieldLogger) (map[string]int, error) {
	ifs, err := v.Inventory.ListInterfaces(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("listing interfaces of device %d: %w", deviceID, err)
	}
	index := make(map[string]int, len(ifs))
	for _, i := range ifs {
		key := ifname.Normalize(i.Name)
		if prev, dup := index[key]; dup {
			if i.ID < prev {
				index[key] = i.ID
			}
			log.WithFields(logrus.Fields{
				"interface": i.Name,
				"key":       key,
				"kept":      index[key],
			}).Warn("interface names collide after normalization")
			continue
		}
		index[key] = i.ID
	}
	return index, nil
}

// interfaceSubnets returns the subnets owning the interface's addresses.
func (v *Validator) interfaceSubnets(ctx context.Context, ifID, version int) ([]netip.Prefix, error) {
	addrs, err := v.Inventory.ListInterfaceAddresses(ctx, ifID, version)
	if err != nil {
		return nil, fmt.Errorf("listing addresses of interface %d: %w", ifID, err)
	}
	var prefixes []netip.Prefix
	for _, a := range addrs {
		p, ok, err := v.Inventory.SubnetOf(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("looking up subnet of %s: %w", a, err)
		}
		if ok {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes, nil
}

func (v *Validator) canonicalize(raw string) (string, error) {
	if v.Canonicalize == nil {
		return util.CanonicalMAC(raw)
	}
	return v.Canonicalize(raw)
}

func (v *Validator) rejected(log logrus.FieldLogger, report *Report, reason Reason) {
	report.reject(reason)
	log.WithField("reason", string(reason)).Debug("entry rejected")
}

func (v *Validator) logger(deviceID int) logrus.FieldLogger {
	return util.OrDiscard(v.Logger).WithField("device_id", deviceID)
}
