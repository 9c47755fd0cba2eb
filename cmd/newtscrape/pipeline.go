package main

import (
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtscrape/pkg/collector"
	"github.com/newtron-network/newtscrape/pkg/config"
	"github.com/newtron-network/newtscrape/pkg/credential"
	"github.com/newtron-network/newtscrape/pkg/inventory"
	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/session"
	"github.com/newtron-network/newtscrape/pkg/snmp"
	"github.com/newtron-network/newtscrape/pkg/validate"
)

// pipeline is everything one collection run needs, built from the
// configuration file and flags.
type pipeline struct {
	collector *collector.Collector
	metrics   *collector.Metrics
	inventory inventory.Store
}

func (p *pipeline) Close() error {
	return p.inventory.Close()
}

// requireDevice checks the device selection flags.
func requireDevice() (model.Device, error) {
	if deviceID <= 0 {
		return model.Device{}, fmt.Errorf("device id required: use -d <device-id> flag")
	}
	if hostname == "" {
		return model.Device{}, fmt.Errorf("hostname required: use -H <hostname> flag")
	}
	if deviceType == "" {
		return model.Device{}, fmt.Errorf("device type required: use -t <type> flag")
	}
	return model.Device{ID: deviceID, Hostname: hostname, Type: deviceType}, nil
}

// loadConfig reads the configuration and applies inventory flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if redisAddr != "" {
		cfg.Inventory.Redis = redisAddr
	}
	if inventoryFile != "" {
		cfg.Inventory.SeedFile = inventoryFile
	}
	return cfg, nil
}

// buildPipeline wires the collector: credential rules, the SSH executor,
// the inventory, the validator and the SNMP fallback when enabled.
func buildPipeline(cfg *config.Config, log logrus.FieldLogger) (*pipeline, error) {
	resolver, err := credential.NewResolver(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	dialer, err := session.NewSSHDialer(cfg.SSH, log)
	if err != nil {
		return nil, err
	}
	executor := session.NewExecutor(log).Register(config.DefaultTransport, dialer)

	inv, err := inventory.Open(cfg.Inventory, log)
	if err != nil {
		return nil, err
	}

	metrics := collector.NewMetrics()
	ccfg := collector.Config{
		Credentials: resolver,
		Runner:      executor,
		Validator:   validate.New(inv, cfg.RestrictToSubnets, log),
		Eligibility: config.NewPolicy(cfg),
		Metrics:     metrics,
		Logger:      log,
	}
	if cfg.SNMP.Enabled {
		ccfg.Fallback = snmp.New(cfg.SNMP, log)
	}

	return &pipeline{
		collector: collector.New(ccfg),
		metrics:   metrics,
		inventory: inv,
	}, nil
}

// writeMetrics prints every gathered metric family in the text exposition
// format.
func writeMetrics(w io.Writer, m *collector.Metrics) error {
	families, err := m.Registry().Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
