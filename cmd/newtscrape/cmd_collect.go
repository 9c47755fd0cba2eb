package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtscrape/pkg/cli"
	"github.com/newtron-network/newtscrape/pkg/model"
)

var neighborsCmd = &cobra.Command{
	Use:     "neighbors",
	Aliases: []string{"arp", "neighbor-cache"},
	Short:   "Fetch the ARP and IPv6 neighbor tables",
	Long: `Fetch the neighbor cache of the selected device.

The IPv4 ARP table and the IPv6 neighbor table are collected independently
and merged. Entries on interfaces unknown to the inventory, link-local
addresses and malformed MACs are dropped.

Examples:
  newtscrape -d 1001 -H core-sw1 -t cisco_ios neighbors
  newtscrape -d 1001 -H core-sw1 -t cisco_ios neighbors --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return collect(cmd, func(ctx context.Context, p *pipeline, dev model.Device, w io.Writer) error {
			cache, err := p.collector.FetchNeighborCache(ctx, dev)
			if err != nil {
				return err
			}
			return printNeighbors(w, cache, jsonOutput)
		})
	},
}

var fwtCmd = &cobra.Command{
	Use:     "fwt",
	Aliases: []string{"forwarding-table", "mac"},
	Short:   "Fetch the dynamic MAC forwarding table",
	Long: `Fetch the dynamic MAC forwarding table of the selected device.

Examples:
  newtscrape -d 1001 -H core-sw1 -t cisco_ios fwt
  newtscrape -d 1001 -H core-sw1 -t cisco_ios fwt --metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return collect(cmd, func(ctx context.Context, p *pipeline, dev model.Device, w io.Writer) error {
			table, err := p.collector.FetchForwardingTable(ctx, dev)
			if err != nil {
				return err
			}
			return printForwardingTable(w, table, jsonOutput)
		})
	},
}

type collectFunc func(ctx context.Context, p *pipeline, dev model.Device, w io.Writer) error

// collect builds the pipeline, runs fn and reports a missing result as a
// message rather than a failure.
func collect(cmd *cobra.Command, fn collectFunc) error {
	dev, err := requireDevice()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	err = fn(ctx, p, dev, w)
	switch {
	case noResult(err):
		fmt.Fprintf(w, "%s: no result\n", cli.Yellow(dev.String()))
	case err != nil:
		return err
	}

	if dumpMetrics {
		return writeMetrics(cmd.ErrOrStderr(), p.metrics)
	}
	return nil
}

func printNeighbors(w io.Writer, cache model.NeighborCache, asJSON bool) error {
	rows := cache.Rows()
	if asJSON {
		if rows == nil {
			rows = []model.NeighborRow{}
		}
		return json.NewEncoder(w).Encode(rows)
	}
	t := cli.NewTable(w, "VERSION", "IFID", "ADDRESS", "MAC")
	for _, r := range rows {
		t.Row("IPv"+strconv.Itoa(r.Version), strconv.Itoa(r.InterfaceID), r.IP, r.MAC)
	}
	return summary(w, t)
}

func printForwardingTable(w io.Writer, table model.ForwardingTable, asJSON bool) error {
	rows := table.Rows()
	if asJSON {
		if rows == nil {
			rows = []model.ForwardingRow{}
		}
		return json.NewEncoder(w).Encode(rows)
	}
	t := cli.NewTable(w, "IFID", "MAC")
	for _, r := range rows {
		t.Row(strconv.Itoa(r.InterfaceID), r.MAC)
	}
	return summary(w, t)
}

func summary(w io.Writer, t *cli.Table) error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.Len() == 0 {
		fmt.Fprintln(w, cli.Yellow("0 entries"))
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", cli.Green(fmt.Sprintf("%d entries", t.Len())))
	return nil
}
