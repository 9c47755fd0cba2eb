// Package settings manages persistent user settings for the newtscrape CLI.
// Flags always win over settings; settings win over built-in defaults.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/newtron-network/newtscrape/pkg/config"
)

// Settings holds persistent user preferences
type Settings struct {
	// ConfigPath is the YAML configuration used when -c is not given
	ConfigPath string `json:"config_path,omitempty"`

	// InventoryFile is the JSON seed used when --inventory is not given
	InventoryFile string `json:"inventory_file,omitempty"`

	// Redis is the inventory Redis address used when --redis is not given
	Redis string `json:"redis,omitempty"`

	// LogLevel is the default log level (debug, info, warn, error)
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "newtscrape_settings.json"
	}
	return filepath.Join(home, ".newtscrape", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// GetConfigPath returns the configuration path (with fallback)
func (s *Settings) GetConfigPath() string {
	if s.ConfigPath != "" {
		return s.ConfigPath
	}
	return config.DefaultPath
}

// Keys lists the names accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(*Settings, string){
	"config_path":    func(s *Settings, v string) { s.ConfigPath = v },
	"inventory_file": func(s *Settings, v string) { s.InventoryFile = v },
	"redis":          func(s *Settings, v string) { s.Redis = v },
	"log_level":      func(s *Settings, v string) { s.LogLevel = v },
}

// Set assigns one setting by name.
func (s *Settings) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	set(s, value)
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
