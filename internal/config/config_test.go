package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withConfigHome points XDG_CONFIG_HOME at a temp dir and clears the remote
// env overrides for the duration of the test.
func withConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvRemoteURL, "")
	t.Setenv(EnvRemoteAPIKey, "")
	return dir
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, "zenflow")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if cfg.Backend != BackendJSON {
		t.Errorf("Backend = %q, want json", cfg.Backend)
	}
	if cfg.Remote.ItemsTable != "tasks" {
		t.Errorf("Remote.ItemsTable = %q, want tasks", cfg.Remote.ItemsTable)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	withConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme.Primary != "#0F172A" {
		t.Errorf("Theme.Primary = %q, want #0F172A", cfg.Theme.Primary)
	}
	if !cfg.UX.CalendarExpanded {
		t.Error("UX.CalendarExpanded should default to true")
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	home := withConfigHome(t)
	writeConfig(t, home, `
backend: SQLite
data_dir: /custom/data
theme:
  primary: "#FF0000"
remote:
  retry_max: 0
keys:
  progress: "x"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q, want /custom/data", cfg.DataDir)
	}
	if cfg.Theme.Primary != "#FF0000" {
		t.Errorf("Theme.Primary = %q, want #FF0000", cfg.Theme.Primary)
	}
	if cfg.Theme.Muted != "#6B7280" {
		t.Errorf("Theme.Muted = %q, want default", cfg.Theme.Muted)
	}
	if cfg.Remote.RetryMax != 0 {
		t.Errorf("Remote.RetryMax = %d, want explicit 0", cfg.Remote.RetryMax)
	}
	if cfg.Keys.Progress != "x" {
		t.Errorf("Keys.Progress = %q, want x", cfg.Keys.Progress)
	}
	if got := cfg.DatabasePath(); got != filepath.Join("/custom/data", "zenflow.db") {
		t.Errorf("DatabasePath() = %q", got)
	}
}

func TestLoad_MissingBoolKeysDoesNotClobberDefaults(t *testing.T) {
	home := withConfigHome(t)
	writeConfig(t, home, `
notifications:
  enabled: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Notify.Enabled {
		t.Error("Notify.Enabled = false, want true")
	}
	if !cfg.UX.CalendarExpanded {
		t.Error("UX.CalendarExpanded was clobbered by an omitted key")
	}
	if cfg.Remote.RetryMax != 3 {
		t.Errorf("Remote.RetryMax = %d, want default 3", cfg.Remote.RetryMax)
	}
}

func TestLoad_ExplicitFalse(t *testing.T) {
	home := withConfigHome(t)
	writeConfig(t, home, "ux:\n  calendar_expanded: false\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UX.CalendarExpanded {
		t.Error("UX.CalendarExpanded = true, want explicit false")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	home := withConfigHome(t)
	writeConfig(t, home, "backend: [json\n")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := withConfigHome(t)
	writeConfig(t, home, `
backend: remote
remote:
  url: https://file.example
  api_key: from-file
`)
	t.Setenv(EnvRemoteAPIKey, "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Remote.URL != "https://file.example" {
		t.Errorf("Remote.URL = %q", cfg.Remote.URL)
	}
	if cfg.Remote.APIKey != "from-env" {
		t.Errorf("Remote.APIKey = %q, want from-env", cfg.Remote.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "mongo" }, "unknown backend"},
		{"remote without url", func(c *Config) { c.Backend = BackendRemote }, "remote.url"},
		{"negative retries", func(c *Config) { c.Remote.RetryMax = -1 }, "retry_max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.mergeNonEmpty(&Config{
		DataDir: "/override/path",
		Theme:   ThemeConfig{Primary: "#CUSTOM"},
		Keys:    KeysConfig{Undo: "z"},
	})

	if base.DataDir != "/override/path" {
		t.Errorf("DataDir = %q, want /override/path", base.DataDir)
	}
	if base.Theme.Primary != "#CUSTOM" {
		t.Errorf("Theme.Primary = %q, want #CUSTOM", base.Theme.Primary)
	}
	if base.Theme.Accent != "#10B981" {
		t.Errorf("Theme.Accent = %q, want #10B981", base.Theme.Accent)
	}
	if base.Keys.Undo != "z" || base.Keys.Redo != "" {
		t.Errorf("Keys = %+v", base.Keys)
	}
}

func TestGetDataDir_ExpandsHome(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "~/zen"
	got := cfg.GetDataDir()
	if strings.HasPrefix(got, "~") {
		t.Errorf("GetDataDir() = %q, want ~ expanded", got)
	}
	if filepath.Base(got) != "zen" {
		t.Errorf("GetDataDir() = %q", got)
	}
	if filepath.Dir(cfg.LogFile()) != got {
		t.Errorf("LogFile() = %q, want inside %q", cfg.LogFile(), got)
	}
}

func TestSave(t *testing.T) {
	home := withConfigHome(t)

	cfg := Default()
	cfg.Backend = BackendSQLite
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFile(filepath.Join(home, "zenflow", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Backend != BackendSQLite {
		t.Errorf("Backend after Save/Load = %q", loaded.Backend)
	}
}
