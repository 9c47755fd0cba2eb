// Newtscrape - neighbor and forwarding table collector
//
// Logs into a network device over its CLI, scrapes the ARP, IPv6 neighbor
// and dynamic MAC forwarding tables, and resolves every entry against the
// interface inventory. When the CLI yields nothing the tables are walked
// over SNMP instead.
//
// Device flags select the target; commands select what to collect:
//
//	newtscrape -d <device-id> -H <hostname> -t <type> <command>
//
// Examples:
//
//	newtscrape -d 1001 -H core-sw1 -t cisco_ios neighbors
//	newtscrape -d 1001 -H core-sw1 -t cisco_ios fwt --json
//	newtscrape --redis 127.0.0.1:6379 -d 1001 -H core-sw1 -t ios neighbors --metrics
//	newtscrape creds core-sw1
//	newtscrape settings set inventory_file /etc/newtscrape/inventory.json
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/newtron-network/newtscrape/pkg/settings"
	"github.com/newtron-network/newtscrape/pkg/util"
	"github.com/newtron-network/newtscrape/pkg/version"
)

var (
	// Device selection flags
	deviceID   int    // -d, --device
	hostname   string // -H, --host
	deviceType string // -t, --type

	// Backend flags
	configPath    string // -c, --config
	inventoryFile string
	redisAddr     string

	// Global option flags
	verbose     bool
	jsonLogs    bool
	jsonOutput  bool
	dumpMetrics bool

	// Global state
	userSettings *settings.Settings
	log          *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "newtscrape",
	Short:             "Neighbor and forwarding table collector",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Newtscrape collects the neighbor cache (ARP and IPv6 ND) and the dynamic
MAC forwarding table of one device and maps each entry to an inventory
interface id.

  newtscrape -d <device-id> -H <hostname> -t <type> <command>`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load settings: %v\n", err)
			userSettings = &settings.Settings{}
		}

		level := userSettings.LogLevel
		if level == "" {
			level = "warn"
		}
		if verbose {
			level = "debug"
		}
		log, err = util.NewLogger(level, jsonLogs)
		if err != nil {
			return util.NewConfigError("log_level", "%v", err)
		}

		if configPath == "" {
			configPath = userSettings.GetConfigPath()
		}
		inventoryFile = util.CoalesceString(inventoryFile, userSettings.InventoryFile)
		redisAddr = util.CoalesceString(redisAddr, userSettings.Redis)
		return nil
	},
}

func init() {
	// Device selection
	rootCmd.PersistentFlags().IntVarP(&deviceID, "device", "d", 0, "Inventory device id")
	rootCmd.PersistentFlags().StringVarP(&hostname, "host", "H", "", "Device hostname (credential lookup and connect)")
	rootCmd.PersistentFlags().StringVarP(&deviceType, "type", "t", "", "Device platform type (e.g. cisco_ios)")

	// Backends
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&inventoryFile, "inventory", "", "Inventory seed file (JSON)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Inventory Redis address (wins over --inventory)")

	// Options
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "Log in JSON format")

	for _, cmd := range []*cobra.Command{neighborsCmd, fwtCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
		cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "Print collection metrics after the result")
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "collect", Title: "Collection:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{neighborsCmd, fwtCmd} {
		cmd.GroupID = "collect"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{credsCmd, settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("newtscrape dev build (no version ldflags)")
			return
		}
		fmt.Printf("newtscrape %s\n", version.Info())
	},
}

// noResult reports whether err means the device produced nothing usable.
// That is an expected outcome, not a failure of the tool.
func noResult(err error) bool {
	return errors.Is(err, util.ErrNoResult) && !errors.Is(err, util.ErrInvalidConfig)
}
