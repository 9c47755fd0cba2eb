// Package collector runs the two public operations: fetch the neighbor
// cache and fetch the forwarding table of one device. Each pass tries the
// device CLI first and falls back to the protocol-based collector only when
// the CLI produced no result at all.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/credential"
	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/parser"
	"github.com/newtron-network/newtscrape/pkg/util"
	"github.com/newtron-network/newtscrape/pkg/validate"
)

// Fallback collects the same tables without the CLI.
type Fallback interface {
	FetchNeighbors(ctx context.Context, dev model.Device, version int) (parser.NeighborTable, error)
	FetchForwardingTable(ctx context.Context, dev model.Device) (parser.ForwardingTable, error)
}

// Eligibility decides whether a device may be collected right now.
type Eligibility interface {
	IsCollectionEnabled(deviceID int, kind model.Kind) bool
	IsInDowntime(deviceID int) bool
}

// CredentialSource resolves login material for a hostname.
type CredentialSource interface {
	Resolve(hostname string) (*credential.Credential, error)
}

// CommandRunner runs one show command in its own session.
type CommandRunner interface {
	Run(ctx context.Context, host string, cred *credential.Credential, command string) ([]string, error)
}

// Config wires a Collector. Fallback, Eligibility and Metrics are optional.
type Config struct {
	Registry    *Registry
	Credentials CredentialSource
	Runner      CommandRunner
	Validator   *validate.Validator
	Fallback    Fallback
	Eligibility Eligibility
	Metrics     *Metrics
	Logger      logrus.FieldLogger
}

// Collector orchestrates collection passes.
type Collector struct {
	registry    *Registry
	creds       CredentialSource
	runner      CommandRunner
	validator   *validate.Validator
	fallback    Fallback
	eligibility Eligibility
	metrics     *Metrics
	log         logrus.FieldLogger
}

// New creates a collector. A nil Registry gets the built-in platforms.
func New(cfg Config) *Collector {
	reg := cfg.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	return &Collector{
		registry:    reg,
		creds:       cfg.Credentials,
		runner:      cfg.Runner,
		validator:   cfg.Validator,
		fallback:    cfg.Fallback,
		eligibility: cfg.Eligibility,
		metrics:     cfg.Metrics,
		log:         util.OrDiscard(cfg.Logger),
	}
}

// FetchNeighborCache collects the IPv4 ARP table and the IPv6 neighbor
// table. Each version is collected independently and the results merged.
// Returns util.ErrNoResult when the device is not eligible or neither
// version produced a result.
func (c *Collector) FetchNeighborCache(ctx context.Context, dev model.Device) (model.NeighborCache, error) {
	log := c.runLogger(dev, model.KindNeighborCache)
	if !c.eligible(dev, model.KindNeighborCache, log) {
		return nil, util.ErrNoResult
	}

	cache := make(model.NeighborCache)
	for _, version := range []int{4, 6} {
		vlog := log.WithField("version", version)
		start := time.Now()
		entries, source, err := c.neighborPass(ctx, dev, version, vlog)
		elapsed := time.Since(start)
		if errors.Is(err, util.ErrInvalidConfig) {
			return nil, err
		}
		if err != nil {
			c.metrics.pass(model.KindNeighborCache, version, "", dev, 0, elapsed)
			vlog.WithError(err).WithField("elapsed", elapsed.Round(time.Millisecond)).Warn("no result")
			continue
		}
		cache[version] = entries
		c.metrics.pass(model.KindNeighborCache, version, source, dev, entries.Len(), elapsed)
		vlog.WithFields(logrus.Fields{
			"source":  source,
			"entries": entries.Len(),
			"elapsed": elapsed.Round(time.Millisecond),
		}).Info("neighbor pass complete")
	}

	if len(cache) == 0 {
		return nil, util.ErrNoResult
	}
	return cache, nil
}

// FetchForwardingTable collects the dynamic MAC forwarding table.
func (c *Collector) FetchForwardingTable(ctx context.Context, dev model.Device) (model.ForwardingTable, error) {
	log := c.runLogger(dev, model.KindForwardingTable)
	if !c.eligible(dev, model.KindForwardingTable, log) {
		return nil, util.ErrNoResult
	}

	start := time.Now()
	table, source, err := c.forwardingPass(ctx, dev, log)
	elapsed := time.Since(start)
	if errors.Is(err, util.ErrInvalidConfig) {
		return nil, err
	}
	if err != nil {
		c.metrics.pass(model.KindForwardingTable, 0, "", dev, 0, elapsed)
		log.WithError(err).WithField("elapsed", elapsed.Round(time.Millisecond)).Warn("no result")
		return nil, util.ErrNoResult
	}
	c.metrics.pass(model.KindForwardingTable, 0, source, dev, table.Len(), elapsed)
	log.WithFields(logrus.Fields{
		"source":  source,
		"entries": table.Len(),
		"elapsed": elapsed.Round(time.Millisecond),
	}).Info("forwarding table pass complete")
	return table, nil
}

func (c *Collector) neighborPass(ctx context.Context, dev model.Device, version int, log logrus.FieldLogger) (model.NeighborEntries, model.Source, error) {
	entries, err := c.neighborsCLI(ctx, dev, version, log)
	if err == nil {
		return entries, model.SourceCLI, nil
	}
	if errors.Is(err, util.ErrInvalidConfig) {
		return nil, "", err
	}
	c.cliUnavailable(err, log)

	if c.fallback == nil {
		return nil, "", fmt.Errorf("%w: no fallback configured", util.ErrNoResult)
	}
	table, err := c.fallback.FetchNeighbors(ctx, dev, version)
	if err != nil {
		return nil, "", fmt.Errorf("fallback: %w", err)
	}
	entries, report, err := c.validator.Neighbors(ctx, dev.ID, version, table)
	if err != nil {
		return nil, "", err
	}
	c.metrics.report(model.KindNeighborCache, report)
	return entries, model.SourceSNMP, nil
}

func (c *Collector) neighborsCLI(ctx context.Context, dev model.Device, version int, log logrus.FieldLogger) (model.NeighborEntries, error) {
	p, cred, err := c.cliPath(dev)
	if err != nil {
		return nil, err
	}
	lines, err := c.runner.Run(ctx, dev.Hostname, cred, p.NeighborCommand(version))
	if err != nil {
		return nil, err
	}
	table, st := p.ParseNeighbors(version, lines, log)
	c.metrics.parsed(model.KindNeighborCache, st)
	log.WithFields(logrus.Fields{"matched": st.Matched, "dropped": st.Dropped}).Debug("parsed")

	entries, report, err := c.validator.Neighbors(ctx, dev.ID, version, table)
	if err != nil {
		return nil, err
	}
	c.metrics.report(model.KindNeighborCache, report)
	return entries, nil
}

func (c *Collector) forwardingPass(ctx context.Context, dev model.Device, log logrus.FieldLogger) (model.ForwardingTable, model.Source, error) {
	table, err := c.forwardingCLI(ctx, dev, log)
	if err == nil {
		return table, model.SourceCLI, nil
	}
	if errors.Is(err, util.ErrInvalidConfig) {
		return nil, "", err
	}
	c.cliUnavailable(err, log)

	if c.fallback == nil {
		return nil, "", fmt.Errorf("%w: no fallback configured", util.ErrNoResult)
	}
	raw, err := c.fallback.FetchForwardingTable(ctx, dev)
	if err != nil {
		return nil, "", fmt.Errorf("fallback: %w", err)
	}
	table, report, err := c.validator.ForwardingTable(ctx, dev.ID, raw)
	if err != nil {
		return nil, "", err
	}
	c.metrics.report(model.KindForwardingTable, report)
	return table, model.SourceSNMP, nil
}

func (c *Collector) forwardingCLI(ctx context.Context, dev model.Device, log logrus.FieldLogger) (model.ForwardingTable, error) {
	p, cred, err := c.cliPath(dev)
	if err != nil {
		return nil, err
	}
	lines, err := c.runner.Run(ctx, dev.Hostname, cred, p.ForwardingTableCommand())
	if err != nil {
		return nil, err
	}
	raw, st := p.ParseForwardingTable(lines, log)
	c.metrics.parsed(model.KindForwardingTable, st)
	log.WithFields(logrus.Fields{"matched": st.Matched, "dropped": st.Dropped}).Debug("parsed")

	table, report, err := c.validator.ForwardingTable(ctx, dev.ID, raw)
	if err != nil {
		return nil, err
	}
	c.metrics.report(model.KindForwardingTable, report)
	return table, nil
}

// cliPath resolves the platform and credentials for a device.
func (c *Collector) cliPath(dev model.Device) (Platform, *credential.Credential, error) {
	p, err := c.registry.Lookup(dev.Type)
	if err != nil {
		return nil, nil, err
	}
	if c.creds == nil || c.runner == nil {
		return nil, nil, errors.New("cli path not configured")
	}
	cred, err := c.creds.Resolve(dev.Hostname)
	if err != nil {
		return nil, nil, err
	}
	return p, cred, nil
}

func (c *Collector) cliUnavailable(err error, log logrus.FieldLogger) {
	var se *util.SessionError
	switch {
	case errors.Is(err, util.ErrNoCredentials):
		log.WithError(err).Warn("no credentials for device, cli path unavailable")
	case errors.As(err, &se):
		log.WithError(err).WithField("step", se.Step).Warn("cli session failed")
	default:
		log.WithError(err).Warn("cli path produced no result")
	}
}

func (c *Collector) eligible(dev model.Device, kind model.Kind, log logrus.FieldLogger) bool {
	if c.eligibility == nil {
		return true
	}
	if !c.eligibility.IsCollectionEnabled(dev.ID, kind) {
		log.Info("collection disabled for device")
		return false
	}
	if c.eligibility.IsInDowntime(dev.ID) {
		log.Info("device in downtime")
		return false
	}
	return true
}

func (c *Collector) runLogger(dev model.Device, kind model.Kind) logrus.FieldLogger {
	return util.WithOperation(util.WithDevice(c.log, dev.String()), string(kind)).WithFields(logrus.Fields{
		"device_id": dev.ID,
		"run_id":    uuid.NewString(),
	})
}
