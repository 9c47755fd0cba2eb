// Package config loads the collector configuration: credential rules, the
// subnet restriction policy, collection eligibility, and the SSH, SNMP and
// inventory backends.
package config

import "time"

// Defaults applied to credential rules that leave fields unset.
const (
	DefaultTransport = "SSH"
	DefaultTimeout   = 30 * time.Second
)

// Config is the top-level configuration file.
type Config struct {
	// Credentials are matched in order against the device hostname.
	Credentials []CredentialRule `yaml:"credentials"`

	// RestrictToSubnets drops neighbor entries whose address is not inside
	// a subnet configured on the interface they were learned on.
	RestrictToSubnets bool `yaml:"restrict_to_subnets"`

	SSH       SSHOptions       `yaml:"ssh"`
	SNMP      SNMPOptions      `yaml:"snmp"`
	Inventory InventoryOptions `yaml:"inventory"`

	// Exclude lists device ids per collection kind ("arp", "fwt").
	Exclude map[string][]int `yaml:"exclude,omitempty"`

	// Downtime declares maintenance windows during which a device is not
	// polled at all.
	Downtime []DowntimeWindow `yaml:"downtime,omitempty"`
}

// CredentialRule maps hostnames matching Pattern to CLI login material.
type CredentialRule struct {
	Pattern         string `yaml:"pattern"`
	Login           string `yaml:"login"`
	Secret          string `yaml:"secret"`
	PrivilegeSecret string `yaml:"privilege_secret,omitempty"`
	Transport       string `yaml:"transport,omitempty"` // default SSH
	TimeoutSeconds  int    `yaml:"timeout,omitempty"`   // default 30
}

// SSHOptions configures the SSH terminal.
type SSHOptions struct {
	Port                  int    `yaml:"port,omitempty"` // default 22
	KnownHosts            string `yaml:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key,omitempty"`
	// Prompt overrides the prompt regex used to detect command completion.
	Prompt string `yaml:"prompt,omitempty"`
}

// SNMPOptions configures the protocol-based fallback collector.
type SNMPOptions struct {
	Enabled        bool     `yaml:"enabled"`
	Community      string   `yaml:"community,omitempty"`
	Version        string   `yaml:"version,omitempty"` // 1, 2c, 3
	Port           int      `yaml:"port,omitempty"`
	TimeoutSeconds int      `yaml:"timeout,omitempty"`
	Retries        int      `yaml:"retries,omitempty"`
	MaxRepetitions int      `yaml:"max_repetitions,omitempty"`
	User           SNMPUser `yaml:"user,omitempty"`
}

// SNMPUser holds SNMPv3 USM parameters.
type SNMPUser struct {
	Name          string `yaml:"name,omitempty"`
	SecurityLevel string `yaml:"level,omitempty"`
	AuthProto     string `yaml:"auth_proto,omitempty"`
	AuthKey       string `yaml:"auth_key,omitempty"`
	PrivProto     string `yaml:"priv_proto,omitempty"`
	PrivKey       string `yaml:"priv_key,omitempty"`
}

// InventoryOptions selects the inventory backend. Redis wins when both are
// set.
type InventoryOptions struct {
	Redis    string `yaml:"redis,omitempty"`
	RedisDB  int    `yaml:"redis_db,omitempty"`
	SeedFile string `yaml:"seed_file,omitempty"`
}

// DowntimeWindow is a declared maintenance period for one device.
type DowntimeWindow struct {
	Device int       `yaml:"device"`
	Start  time.Time `yaml:"start"`
	End    time.Time `yaml:"end"`
	Reason string    `yaml:"reason,omitempty"`
}

// Timeout returns the rule timeout with the default applied.
func (r CredentialRule) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}
