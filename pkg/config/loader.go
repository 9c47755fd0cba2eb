package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/util"
)

// DefaultPath is used when neither a flag nor the settings file names one.
var DefaultPath = "/etc/newtscrape/config.yaml"

// Load reads and validates a configuration file. Every error wraps
// util.ErrInvalidConfig: a broken file is a deployment defect.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", util.ErrInvalidConfig, path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration. Unknown keys are rejected
// so that typos do not silently disable a policy.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing yaml: %v", util.ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SSH.Port == 0 {
		c.SSH.Port = 22
	}
	if c.SNMP.Port == 0 {
		c.SNMP.Port = 161
	}
	if c.SNMP.Version == "" {
		c.SNMP.Version = "2c"
	}
	if c.SNMP.TimeoutSeconds == 0 {
		c.SNMP.TimeoutSeconds = 5
	}
	if c.SNMP.MaxRepetitions == 0 {
		c.SNMP.MaxRepetitions = 25
	}
}

// Validate checks the configuration for structural defects.
func (c *Config) Validate() error {
	var v util.ValidationBuilder

	v.Add(len(c.Credentials) > 0, "credentials: at least one rule is required")
	for i, r := range c.Credentials {
		v.AddAll(ValidateRule(i, r))
	}

	for kind := range c.Exclude {
		switch model.Kind(kind) {
		case model.KindNeighborCache, model.KindForwardingTable:
		default:
			v.AddErrorf("exclude: unknown collection kind %q (valid: arp, fwt)", kind)
		}
	}

	for i, w := range c.Downtime {
		v.Add(w.Device != 0, fmt.Sprintf("downtime[%d]: device is required", i))
		v.Add(!w.Start.IsZero() && !w.End.IsZero(), fmt.Sprintf("downtime[%d]: start and end are required", i))
		v.Add(!w.End.Before(w.Start), fmt.Sprintf("downtime[%d]: end is before start", i))
	}

	if c.SNMP.Enabled {
		switch c.SNMP.Version {
		case "1", "2c":
			v.Add(c.SNMP.Community != "", "snmp: community is required for v1/v2c")
		case "3":
			v.Add(c.SNMP.User.Name != "", "snmp: user.name is required for v3")
		default:
			v.AddErrorf("snmp: invalid version %q", c.SNMP.Version)
		}
	}

	if c.SSH.Prompt != "" {
		if _, err := regexp.Compile(c.SSH.Prompt); err != nil {
			v.AddErrorf("ssh.prompt: %v", err)
		}
	}

	return v.Build()
}

// ValidateRule returns the problems with one credential rule.
func ValidateRule(i int, r CredentialRule) []string {
	var errs []string
	if r.Pattern == "" {
		errs = append(errs, fmt.Sprintf("credentials[%d]: pattern is required", i))
	} else if _, err := regexp.Compile(r.Pattern); err != nil {
		errs = append(errs, fmt.Sprintf("credentials[%d]: pattern: %v", i, err))
	}
	if r.Login == "" {
		errs = append(errs, fmt.Sprintf("credentials[%d]: login is required", i))
	}
	if r.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("credentials[%d]: timeout must not be negative", i))
	}
	if t := strings.ToUpper(r.Transport); t != "" && t != "SSH" && t != "TELNET" {
		errs = append(errs, fmt.Sprintf("credentials[%d]: unknown transport %q", i, r.Transport))
	}
	return errs
}
