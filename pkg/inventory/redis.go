package inventory

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/util"
)

// RedisStore reads the inventory tables from a Redis database.
type RedisStore struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisStore creates a store for the given address and database. No
// connection is made until the first query.
func NewRedisStore(addr string, db int, log logrus.FieldLogger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		log: util.OrDiscard(log).WithField("inventory", addr),
	}
}

// Ping tests the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ListInterfaces implements Store. Entries with an unreadable id are
// skipped and logged.
func (s *RedisStore) ListInterfaces(ctx context.Context, deviceID int) ([]Interface, error) {
	prefix := fmt.Sprintf("%s|%d|", TableInterface, deviceID)
	keys, err := s.client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing interfaces of device %d: %w", deviceID, err)
	}
	ifs := make([]Interface, 0, len(keys))
	for _, key := range keys {
		field, err := s.client.HGet(ctx, key, "id").Result()
		if err == redis.Nil {
			s.log.WithField("key", key).Warn("interface without id")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		id, err := parseInterfaceID(field)
		if err != nil {
			s.log.WithField("key", key).WithError(err).Warn("skipping interface")
			continue
		}
		ifs = append(ifs, Interface{ID: id, Name: strings.TrimPrefix(key, prefix)})
	}
	sortInterfaces(ifs)
	return ifs, nil
}

// ListInterfaceAddresses implements Store.
func (s *RedisStore) ListInterfaceAddresses(ctx context.Context, ifID int, version int) ([]netip.Addr, error) {
	prefix := fmt.Sprintf("%s|%d|", TableInterfaceIP, ifID)
	keys, err := s.client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing addresses of interface %d: %w", ifID, err)
	}
	var out []netip.Addr
	for _, key := range keys {
		addr, err := util.ParseIP(strings.TrimPrefix(key, prefix))
		if err != nil {
			s.log.WithField("key", key).Warn("skipping unparseable interface address")
			continue
		}
		if util.IPVersion(addr) == version {
			out = append(out, addr)
		}
	}
	return out, nil
}

// SubnetOf implements Store.
func (s *RedisStore) SubnetOf(ctx context.Context, addr netip.Addr) (netip.Prefix, bool, error) {
	keys, err := s.client.Keys(ctx, TableSubnet+"|*").Result()
	if err != nil {
		return netip.Prefix{}, false, fmt.Errorf("listing subnets: %w", err)
	}
	prefixes := make([]netip.Prefix, 0, len(keys))
	for _, key := range keys {
		p, err := netip.ParsePrefix(strings.TrimPrefix(key, TableSubnet+"|"))
		if err != nil {
			s.log.WithField("key", key).Warn("skipping unparseable subnet")
			continue
		}
		prefixes = append(prefixes, p.Masked())
	}
	p, ok := util.MostSpecific(prefixes, addr.Unmap())
	return p, ok, nil
}
