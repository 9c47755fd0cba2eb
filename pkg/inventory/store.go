// Package inventory reads what the collector needs to know about a device
// it did not learn from the device itself: its interfaces, the addresses
// configured on them and the subnets those addresses belong to. The
// collector only ever reads from it.
//
// Data is laid out as flat tables, in Redis as hashes at "TABLE|key":
//
//	INTERFACE|<device-id>|<name>      {"id": "<interface-id>"}
//	INTERFACE_IP|<interface-id>|<ip>  {}
//	SUBNET|<prefix>                   {"description": "..."}
package inventory

import (
	"context"
	"fmt"
	"net/netip"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/config"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// Table names.
const (
	TableInterface   = "INTERFACE"
	TableInterfaceIP = "INTERFACE_IP"
	TableSubnet      = "SUBNET"
)

// Interface is one interface of a device as recorded in the inventory.
type Interface struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Store is the read-only inventory the validator consults.
type Store interface {
	// ListInterfaces returns every interface of the device, ordered by id.
	ListInterfaces(ctx context.Context, deviceID int) ([]Interface, error)
	// ListInterfaceAddresses returns the addresses of the given IP version
	// configured on the interface.
	ListInterfaceAddresses(ctx context.Context, ifID int, version int) ([]netip.Addr, error)
	// SubnetOf returns the most specific known subnet containing addr.
	SubnetOf(ctx context.Context, addr netip.Addr) (netip.Prefix, bool, error)
	Close() error
}

// Open returns the backend selected by opts: Redis when an address is set,
// otherwise the JSON seed file.
func Open(opts config.InventoryOptions, log logrus.FieldLogger) (Store, error) {
	switch {
	case opts.Redis != "":
		return NewRedisStore(opts.Redis, opts.RedisDB, log), nil
	case opts.SeedFile != "":
		return LoadSeedFile(opts.SeedFile)
	default:
		return nil, util.NewConfigError("inventory", "either redis or seed_file is required")
	}
}

// splitEntry splits a table entry key "a|b" into its two parts.
func splitEntry(entry string) (string, string, bool) {
	parts := strings.SplitN(entry, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func parseInterfaceID(field string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid interface id %q", field)
	}
	return id, nil
}

func sortInterfaces(ifs []Interface) {
	sort.Slice(ifs, func(i, j int) bool {
		if ifs[i].ID != ifs[j].ID {
			return ifs[i].ID < ifs[j].ID
		}
		return ifs[i].Name < ifs[j].Name
	})
}
