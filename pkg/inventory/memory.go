package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"strconv"

	"github.com/newtron-network/newtscrape/pkg/util"
)

// MemoryStore is an in-process inventory, loaded from a seed file or built
// directly in tests.
type MemoryStore struct {
	interfaces map[int][]Interface
	addresses  map[int][]netip.Addr
	subnets    []netip.Prefix
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interfaces: make(map[int][]Interface),
		addresses:  make(map[int][]netip.Addr),
	}
}

// LoadSeedFile reads a JSON seed file in table form:
//
//	{"INTERFACE": {"1001|GigabitEthernet0/3.2335": {"id": "42"}}, ...}
//
// This is the same layout testutil seeds into Redis.
func LoadSeedFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.NewConfigError("inventory.seed_file", "%v", err)
	}
	var tables map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, util.NewConfigError("inventory.seed_file", "parsing %s: %v", path, err)
	}
	s, err := FromTables(tables)
	if err != nil {
		return nil, util.NewConfigError("inventory.seed_file", "%s: %v", path, err)
	}
	return s, nil
}

// FromTables builds a store from decoded seed tables.
func FromTables(tables map[string]map[string]map[string]string) (*MemoryStore, error) {
	s := NewMemoryStore()
	for entry, fields := range tables[TableInterface] {
		dev, name, ok := splitEntry(entry)
		if !ok {
			return nil, fmt.Errorf("%s: malformed key %q", TableInterface, entry)
		}
		deviceID, err := strconv.Atoi(dev)
		if err != nil {
			return nil, fmt.Errorf("%s|%s: invalid device id", TableInterface, entry)
		}
		id, err := parseInterfaceID(fields["id"])
		if err != nil {
			return nil, fmt.Errorf("%s|%s: %v", TableInterface, entry, err)
		}
		s.AddInterface(deviceID, id, name)
	}
	for entry := range tables[TableInterfaceIP] {
		ifPart, ipPart, ok := splitEntry(entry)
		if !ok {
			return nil, fmt.Errorf("%s: malformed key %q", TableInterfaceIP, entry)
		}
		ifID, err := parseInterfaceID(ifPart)
		if err != nil {
			return nil, fmt.Errorf("%s|%s: %v", TableInterfaceIP, entry, err)
		}
		addr, err := util.ParseIP(ipPart)
		if err != nil {
			return nil, fmt.Errorf("%s|%s: %v", TableInterfaceIP, entry, err)
		}
		s.AddAddress(ifID, addr)
	}
	for entry := range tables[TableSubnet] {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return nil, fmt.Errorf("%s|%s: %v", TableSubnet, entry, err)
		}
		s.AddSubnet(p)
	}
	for _, ifs := range s.interfaces {
		sortInterfaces(ifs)
	}
	return s, nil
}

// AddInterface records an interface of a device.
func (s *MemoryStore) AddInterface(deviceID, id int, name string) *MemoryStore {
	s.interfaces[deviceID] = append(s.interfaces[deviceID], Interface{ID: id, Name: name})
	return s
}

// AddAddress records an address configured on an interface.
func (s *MemoryStore) AddAddress(ifID int, addr netip.Addr) *MemoryStore {
	s.addresses[ifID] = append(s.addresses[ifID], addr.Unmap())
	return s
}

// AddSubnet records a known subnet.
func (s *MemoryStore) AddSubnet(p netip.Prefix) *MemoryStore {
	s.subnets = append(s.subnets, p.Masked())
	return s
}

// ListInterfaces implements Store.
func (s *MemoryStore) ListInterfaces(ctx context.Context, deviceID int) ([]Interface, error) {
	ifs := append([]Interface(nil), s.interfaces[deviceID]...)
	sortInterfaces(ifs)
	return ifs, nil
}

// ListInterfaceAddresses implements Store.
func (s *MemoryStore) ListInterfaceAddresses(ctx context.Context, ifID int, version int) ([]netip.Addr, error) {
	var out []netip.Addr
	for _, a := range s.addresses[ifID] {
		if util.IPVersion(a) == version {
			out = append(out, a)
		}
	}
	return out, nil
}

// SubnetOf implements Store.
func (s *MemoryStore) SubnetOf(ctx context.Context, addr netip.Addr) (netip.Prefix, bool, error) {
	p, ok := util.MostSpecific(s.subnets, addr.Unmap())
	return p, ok, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
