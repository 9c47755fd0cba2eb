package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/newtron-network/newtscrape/pkg/config"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if got := s.GetConfigPath(); got != config.DefaultPath {
		t.Errorf("GetConfigPath() default = %q, want %q", got, config.DefaultPath)
	}
	if s.Redis != "" || s.InventoryFile != "" || s.LogLevel != "" {
		t.Errorf("zero settings not empty: %+v", s)
	}
}

func TestSettings_Set(t *testing.T) {
	s := &Settings{}

	tests := []struct {
		key, value string
		get        func() string
	}{
		{"config_path", "/srv/newtscrape.yaml", func() string { return s.GetConfigPath() }},
		{"inventory_file", "/srv/seed.json", func() string { return s.InventoryFile }},
		{"redis", "10.0.0.5:6379", func() string { return s.Redis }},
		{"log_level", "debug", func() string { return s.LogLevel }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := s.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got := tt.get(); got != tt.value {
				t.Errorf("%s = %q, want %q", tt.key, got, tt.value)
			}
		})
	}

	if err := s.Set("default_network", "x"); err == nil {
		t.Error("Set() should reject unknown keys")
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		ConfigPath:    "/path",
		InventoryFile: "seed.json",
		Redis:         "localhost:6379",
		LogLevel:      "debug",
	}

	s.Clear()

	if !reflect.DeepEqual(s, &Settings{}) {
		t.Errorf("Clear() left %+v", s)
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	original := &Settings{
		ConfigPath: "/etc/newtscrape/lab.yaml",
		Redis:      "10.0.0.5:6379",
		LogLevel:   "warn",
	}
	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("settings file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("loaded %+v, want %+v", loaded, original)
	}
}

func TestSettings_LoadMissing(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !reflect.DeepEqual(s, &Settings{}) {
		t.Errorf("missing file should give empty settings, got %+v", s)
	}
}

func TestSettings_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should fail on corrupt file")
	}
}

func TestKeys(t *testing.T) {
	want := []string{"config_path", "inventory_file", "log_level", "redis"}
	if got := Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
