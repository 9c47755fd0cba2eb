package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/newtscrape/pkg/cli"
	"github.com/newtron-network/newtscrape/pkg/collector"
	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/util"
)

const testConfig = `
credentials:
  - pattern: "^core-"
    login: admin
    secret: cisco
    privilege_secret: enablepw
    timeout: 10
ssh:
  insecure_ignore_host_key: true
exclude:
  arp: [1001]
  fwt: [1001]
`

// runCLI executes the root command with a private HOME so no real settings
// file is read or written.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cli.SetColor(false)

	deviceID, hostname, deviceType = 0, "", ""
	configPath, inventoryFile, redisAddr = "", "", ""
	verbose, jsonLogs, jsonOutput, dumpMetrics = false, false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const seedFile = "../../pkg/inventory/testdata/seed.json"

func TestCollect_ExcludedDeviceReportsNoResult(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	for _, command := range []string{"neighbors", "fwt"} {
		t.Run(command, func(t *testing.T) {
			out, err := runCLI(t, "-c", cfg, "--inventory", seedFile,
				"-d", "1001", "-H", "core-sw1", "-t", "cisco_ios", command, "--metrics")
			require.NoError(t, err)
			assert.Contains(t, out, "core-sw1: no result")
			// Excluded devices never start a pass.
			assert.NotContains(t, out, "newtscrape_passes_total{")
		})
	}
}

func TestCollect_MissingDeviceFlags(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	_, err := runCLI(t, "-c", cfg, "--inventory", seedFile, "-H", "core-sw1", "-t", "cisco_ios", "neighbors")
	assert.ErrorContains(t, err, "device id required")

	_, err = runCLI(t, "-c", cfg, "--inventory", seedFile, "-d", "1001", "-t", "cisco_ios", "neighbors")
	assert.ErrorContains(t, err, "hostname required")

	_, err = runCLI(t, "-c", cfg, "--inventory", seedFile, "-d", "1001", "-H", "core-sw1", "fwt")
	assert.ErrorContains(t, err, "device type required")
}

func TestCollect_ConfigDefectsFail(t *testing.T) {
	t.Run("no inventory", func(t *testing.T) {
		cfg := writeConfig(t, testConfig)
		_, err := runCLI(t, "-c", cfg, "-d", "1001", "-H", "core-sw1", "-t", "cisco_ios", "neighbors")
		require.Error(t, err)
		assert.True(t, errors.Is(err, util.ErrInvalidConfig), "error = %v", err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := runCLI(t, "-c", filepath.Join(t.TempDir(), "absent.yaml"),
			"--inventory", seedFile, "-d", "1001", "-H", "core-sw1", "-t", "cisco_ios", "fwt")
		assert.True(t, errors.Is(err, util.ErrInvalidConfig), "error = %v", err)
	})
}

func TestCredsCommand(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, err := runCLI(t, "-c", cfg, "creds", "core-sw1")
	require.NoError(t, err)
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "c****")
	assert.Contains(t, out, "e*******")
	assert.Contains(t, out, "SSH")
	assert.Contains(t, out, "10s")
	assert.NotContains(t, out, "cisco")
	assert.NotContains(t, out, "enablepw")

	out, err = runCLI(t, "-c", cfg, "creds", "edge-rtr2")
	require.NoError(t, err)
	assert.Contains(t, out, "no rule matches")
}

func TestSettingsCommand(t *testing.T) {
	home := t.TempDir()
	run := func(args ...string) string {
		t.Helper()
		t.Setenv("HOME", home)
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	run("settings", "set", "redis", "127.0.0.1:6379")
	out := run("settings", "show")
	assert.Contains(t, out, "127.0.0.1:6379")
	assert.Contains(t, out, filepath.Join(home, ".newtscrape", "settings.json"))

	run("settings", "clear")
	out = run("settings", "show")
	assert.NotContains(t, out, "127.0.0.1:6379")

	rootCmd.SetArgs([]string{"settings", "set", "bogus", "x"})
	assert.Error(t, rootCmd.Execute())
}

func TestPrintNeighbors(t *testing.T) {
	cli.SetColor(false)
	cache := model.NeighborCache{
		4: {42: {netip.MustParseAddr("10.82.250.129"): "00:00:0c:9f:f0:02"}},
		6: {42: {netip.MustParseAddr("2001:db8:2335::10"): "00:24:b2:0e:fe:0f"}},
	}

	var buf bytes.Buffer
	require.NoError(t, printNeighbors(&buf, cache, false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, []string{"VERSION", "IFID", "ADDRESS", "MAC"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"IPv4", "42", "10.82.250.129", "00:00:0c:9f:f0:02"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"IPv6", "42", "2001:db8:2335::10", "00:24:b2:0e:fe:0f"}, strings.Fields(lines[3]))
	assert.Contains(t, buf.String(), "2 entries")

	buf.Reset()
	require.NoError(t, printNeighbors(&buf, cache, true))
	var rows []model.NeighborRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].Version)
}

func TestPrintForwardingTable(t *testing.T) {
	cli.SetColor(false)
	table := model.ForwardingTable{}
	table.Add(7, "00:1b:54:c2:4a:41")
	table.Add(7, "00:00:0c:9f:f0:02")

	var buf bytes.Buffer
	require.NoError(t, printForwardingTable(&buf, table, false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"7", "00:00:0c:9f:f0:02"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"7", "00:1b:54:c2:4a:41"}, strings.Fields(lines[3]))

	buf.Reset()
	require.NoError(t, printForwardingTable(&buf, model.ForwardingTable{}, true))
	assert.Equal(t, "[]\n", buf.String())
}

func TestNoResult(t *testing.T) {
	assert.True(t, noResult(util.ErrNoResult))
	assert.True(t, noResult(fmt.Errorf("fallback: %w", util.ErrNoResult)))
	assert.False(t, noResult(util.NewConfigError("credentials", "empty")))
	assert.False(t, noResult(errors.New("boom")))
	assert.False(t, noResult(nil))
}

func TestWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, collector.NewMetrics()))
	// Vectors with no observations are not exported.
	assert.Empty(t, buf.String())
}
