//go:build integration

// Package testutil runs integration tests against a real Redis inventory.
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// ContainerName is the docker container probed when
// NEWTSCRAPE_TEST_REDIS_ADDR is unset.
const ContainerName = "newtscrape-test-redis"

// RedisAddr returns the test Redis address, or "" when none is available.
func RedisAddr() string {
	if addr := os.Getenv("NEWTSCRAPE_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	out, err := exec.Command("docker", "inspect",
		"--format", "{{range .NetworkSettings.Networks}}{{.IPAddress}}{{end}}",
		ContainerName).Output()
	if err != nil {
		return ""
	}
	if ip := strings.TrimSpace(string(out)); ip != "" {
		return ip + ":6379"
	}
	return ""
}

// Inventory is one Redis database holding inventory tables for a test.
type Inventory struct {
	Addr   string
	DB     int
	client *redis.Client
}

// NewInventory connects to the test Redis and empties db. The test is
// skipped when Redis is not reachable. The database is flushed again when
// the test ends.
func NewInventory(t *testing.T, db int) *Inventory {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skipf("test Redis not available: set NEWTSCRAPE_TEST_REDIS_ADDR or start %s", ContainerName)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx := Context(t)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}

	inv := &Inventory{Addr: addr, DB: db, client: client}
	inv.flush(t)
	t.Cleanup(func() {
		inv.flush(t)
		client.Close()
	})
	return inv
}

func (inv *Inventory) flush(t *testing.T) {
	t.Helper()
	if err := inv.client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", inv.DB, err)
	}
}

// LoadSeed writes a seed file in table form
// ({"TABLE": {"key": {"field": "value"}}}) as hashes at "TABLE|key".
func (inv *Inventory) LoadSeed(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading seed %s: %v", path, err)
	}
	var tables map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &tables); err != nil {
		t.Fatalf("parsing seed %s: %v", path, err)
	}
	for table, entries := range tables {
		for key, fields := range entries {
			inv.Put(t, table, key, fields)
		}
	}
}

// Put writes one entry. Entries without fields (INTERFACE_IP) get a NULL
// placeholder so the key exists.
func (inv *Inventory) Put(t *testing.T, table, key string, fields map[string]string) {
	t.Helper()

	args := []interface{}{"NULL", "NULL"}
	if len(fields) > 0 {
		args = args[:0]
		for k, v := range fields {
			args = append(args, k, v)
		}
	}
	redisKey := table + "|" + key
	if err := inv.client.HSet(context.Background(), redisKey, args...).Err(); err != nil {
		t.Fatalf("writing %s: %v", redisKey, err)
	}
}

// Context returns a context with a 30s timeout, cancelled at test cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
