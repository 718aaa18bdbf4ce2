package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Write modes for document writes
const (
	WriteModeAtomic   = "atomic"
	WriteModeTruncate = "truncate"
)

// SQL drivers accepted for the embedded store
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCgo     = "sqlite3" // github.com/mattn/go-sqlite3
)

// FilterConfig is a named set of file patterns shown in native dialogs
type FilterConfig struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Config holds all application configuration
type Config struct {
	Port                int            `yaml:"port"`
	BindAddress         string         `yaml:"bind_address"`
	DataDir             string         `yaml:"data_dir"`
	SQLDriver           string         `yaml:"sql_driver"`
	MaintenanceSchedule string         `yaml:"maintenance_schedule"`
	WriteMode           string         `yaml:"write_mode"`
	LogLevel            string         `yaml:"log_level"`
	DialogFilters       []FilterConfig `yaml:"dialog_filters"`

	// ConfigFile is the YAML file that was applied, if any
	ConfigFile string `yaml:"-"`
}

// DefaultFilters are the dialog filters used when none are configured
func DefaultFilters() []FilterConfig {
	return []FilterConfig{
		{Name: "PDF Files", Patterns: []string{"*.pdf"}},
		{Name: "All Files", Patterns: []string{"*"}},
	}
}

func defaults() *Config {
	return &Config{
		Port:                18080,
		BindAddress:         "127.0.0.1",
		DataDir:             AppDataDir(),
		SQLDriver:           DriverModernc,
		MaintenanceSchedule: "@daily",
		WriteMode:           WriteModeAtomic,
		LogLevel:            "info",
		DialogFilters:       DefaultFilters(),
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables take precedence over the file, which takes precedence
// over built-in defaults.
func Load() (*Config, error) {
	cfg := defaults()

	path := ExpandPath(getEnv("FOLIO_CONFIG", ""))
	explicit := path != ""
	if !explicit {
		dataDir := ExpandPath(getEnv("FOLIO_DATA_DIR", cfg.DataDir))
		path = filepath.Join(dataDir, "config.yaml")
	}
	if err := cfg.applyFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays values from a YAML file. A missing file is only an
// error when it was requested explicitly.
func (c *Config) applyFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvInt("FOLIO_PORT", c.Port)
	c.BindAddress = getEnv("FOLIO_BIND_ADDRESS", c.BindAddress)
	c.DataDir = getEnv("FOLIO_DATA_DIR", c.DataDir)
	c.SQLDriver = getEnv("FOLIO_SQL_DRIVER", c.SQLDriver)
	if val, ok := os.LookupEnv("FOLIO_MAINTENANCE_SCHEDULE"); ok {
		// Empty disables maintenance
		c.MaintenanceSchedule = strings.TrimSpace(val)
	}
	c.WriteMode = strings.ToLower(getEnv("FOLIO_WRITE_MODE", c.WriteMode))
	c.LogLevel = strings.ToLower(getEnv("FOLIO_LOG_LEVEL", c.LogLevel))
	c.DataDir = ExpandPath(c.DataDir)
}

// Validate checks that enumerated settings hold known values
func (c *Config) Validate() error {
	switch c.WriteMode {
	case WriteModeAtomic, WriteModeTruncate:
	default:
		return fmt.Errorf("invalid write_mode %q (want %q or %q)", c.WriteMode, WriteModeAtomic, WriteModeTruncate)
	}
	switch c.SQLDriver {
	case DriverModernc, DriverCgo:
	default:
		return fmt.Errorf("invalid sql_driver %q (want %q or %q)", c.SQLDriver, DriverModernc, DriverCgo)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	for _, f := range c.DialogFilters {
		if f.Name == "" || len(f.Patterns) == 0 {
			return fmt.Errorf("dialog filter needs a name and at least one pattern")
		}
	}
	return nil
}

// AtomicWrites reports whether document writes go through temp-file-and-rename
func (c *Config) AtomicWrites() bool {
	return c.WriteMode == WriteModeAtomic
}

// EnsureDataDir creates the data directory if needed and returns it
func (c *Config) EnsureDataDir() (string, error) {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return c.DataDir, nil
}

// AppDataDir returns the platform-appropriate application data directory.
func AppDataDir() string {
	return appDataDir(runtime.GOOS)
}

func appDataDir(goos string) string {
	switch goos {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Folio")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Folio")
	default: // Linux and others
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "folio")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio")
	}
}

// ExpandPath expands a leading ~ to the user's home directory and cleans
// the result. Empty input stays empty.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(path)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
