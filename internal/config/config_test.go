package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},

		// Absolute paths (unchanged except for cleaning)
		{"absolute path", "/usr/local/bin", "/usr/local/bin"},
		{"absolute with trailing slash", "/usr/local/bin/", "/usr/local/bin"},

		// Home expansion
		{"tilde only", "~", home},
		{"tilde with path", "~/documents", filepath.Join(home, "documents")},
		{"tilde nested", "~/a/b/c", filepath.Join(home, "a/b/c")},

		// Relative paths (cleaned but not made absolute)
		{"relative", "foo/bar", "foo/bar"},
		{"relative with dots", "foo/../bar", "bar"},

		// Edge cases
		{"tilde in middle (not expanded)", "/home/~user", "/home/~user"},
		{"tilde user (not expanded)", "~user/docs", "~user/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandPath(tt.input)
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name       string
		envKey     string
		envValue   string
		defaultVal int
		want       int
	}{
		{"empty env", "TEST_INT_EMPTY", "", 42, 42},
		{"valid int", "TEST_INT_VALID", "123", 42, 123},
		{"invalid int", "TEST_INT_INVALID", "not-a-number", 42, 42},
		{"negative int", "TEST_INT_NEG", "-5", 42, -5},
		{"zero", "TEST_INT_ZERO", "0", 42, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			got := getEnvInt(tt.envKey, tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.envKey, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestAppDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if got := appDataDir("linux"); got != "/xdg/data/folio" {
		t.Errorf("appDataDir(linux) with XDG_DATA_HOME = %q, want /xdg/data/folio", got)
	}

	t.Setenv("XDG_DATA_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := appDataDir("linux"), filepath.Join(home, ".local", "share", "folio"); got != want {
		t.Errorf("appDataDir(linux) = %q, want %q", got, want)
	}
	if got, want := appDataDir("darwin"), filepath.Join(home, "Library", "Application Support", "Folio"); got != want {
		t.Errorf("appDataDir(darwin) = %q, want %q", got, want)
	}
}

// clearEnv unsets every FOLIO_ variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FOLIO_CONFIG", "FOLIO_PORT", "FOLIO_BIND_ADDRESS", "FOLIO_DATA_DIR",
		"FOLIO_SQL_DRIVER", "FOLIO_MAINTENANCE_SCHEDULE", "FOLIO_WRITE_MODE", "FOLIO_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_DATA_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WriteMode != WriteModeAtomic {
		t.Errorf("WriteMode = %q, want %q", cfg.WriteMode, WriteModeAtomic)
	}
	if cfg.SQLDriver != DriverModernc {
		t.Errorf("SQLDriver = %q, want %q", cfg.SQLDriver, DriverModernc)
	}
	if cfg.MaintenanceSchedule != "@daily" {
		t.Errorf("MaintenanceSchedule = %q, want @daily", cfg.MaintenanceSchedule)
	}
	if len(cfg.DialogFilters) != 2 || cfg.DialogFilters[0].Name != "PDF Files" {
		t.Fatalf("DialogFilters = %v, want default PDF/All filters", cfg.DialogFilters)
	}
	if all := cfg.DialogFilters[len(cfg.DialogFilters)-1]; len(all.Patterns) != 1 || all.Patterns[0] != "*" {
		t.Errorf("catch-all filter = %v, want single * pattern", all)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want empty when no file exists", cfg.ConfigFile)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yamlData := `
port: 9000
write_mode: truncate
sql_driver: sqlite3
dialog_filters:
  - name: Markdown
    patterns: ["*.md", "*.markdown"]
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlData), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOLIO_DATA_DIR", dir)
	t.Setenv("FOLIO_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want env override 9100", cfg.Port)
	}
	if cfg.WriteMode != WriteModeTruncate {
		t.Errorf("WriteMode = %q, want %q from file", cfg.WriteMode, WriteModeTruncate)
	}
	if cfg.AtomicWrites() {
		t.Error("AtomicWrites() = true, want false for truncate mode")
	}
	if cfg.SQLDriver != DriverCgo {
		t.Errorf("SQLDriver = %q, want %q", cfg.SQLDriver, DriverCgo)
	}
	if len(cfg.DialogFilters) != 1 || cfg.DialogFilters[0].Name != "Markdown" {
		t.Errorf("DialogFilters = %v, want single Markdown filter", cfg.DialogFilters)
	}
	if cfg.ConfigFile != filepath.Join(dir, "config.yaml") {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load with missing explicit config file should fail")
	}
}

func TestLoad_EmptyScheduleDisables(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_DATA_DIR", t.TempDir())
	t.Setenv("FOLIO_MAINTENANCE_SCHEDULE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaintenanceSchedule != "" {
		t.Errorf("MaintenanceSchedule = %q, want empty", cfg.MaintenanceSchedule)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad write mode", func(c *Config) { c.WriteMode = "rename" }, true},
		{"bad driver", func(c *Config) { c.SQLDriver = "postgres" }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"filter without patterns", func(c *Config) {
			c.DialogFilters = []FilterConfig{{Name: "Empty"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
