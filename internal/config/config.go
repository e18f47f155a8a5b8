// Package config loads zenflow settings from ~/.config/zenflow/config.yaml
// (XDG_CONFIG_HOME is honoured) and fills in defaults for anything omitted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zenflow/internal/fsutil"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.Backend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Environment overrides for the remote backend.
const (
	EnvRemoteURL    = "ZENFLOW_REMOTE_URL"
	EnvRemoteAPIKey = "ZENFLOW_REMOTE_API_KEY"
)

// Config represents the application configuration.
type Config struct {
	// Backend selects where items live: json, sqlite or remote.
	Backend string `yaml:"backend,omitempty"`

	// DataDir overrides the default data directory (~/.zenflow)
	DataDir string `yaml:"data_dir,omitempty"`

	Database DatabaseConfig     `yaml:"database,omitempty"`
	Remote   RemoteConfig       `yaml:"remote,omitempty"`
	Server   ServerConfig       `yaml:"server,omitempty"`
	Theme    ThemeConfig        `yaml:"theme,omitempty"`
	Keys     KeysConfig         `yaml:"keys,omitempty"`
	UX       UXConfig           `yaml:"ux,omitempty"`
	Log      LogConfig          `yaml:"log,omitempty"`
	Notify   NotificationConfig `yaml:"notifications,omitempty"`
}

// DatabaseConfig configures the sqlite backend.
type DatabaseConfig struct {
	// Path of the database file. Empty means <data_dir>/zenflow.db.
	Path string `yaml:"path,omitempty"`
}

// RemoteConfig configures the hosted PostgREST backend.
type RemoteConfig struct {
	URL            string `yaml:"url,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	ItemsTable     string `yaml:"items_table,omitempty"`
	AreasTable     string `yaml:"areas_table,omitempty"`
	DemandsTable   string `yaml:"demands_table,omitempty"`
	RetryMax       int    `yaml:"retry_max,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// ServerConfig configures `zenflow serve`.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	// File receives log output while the TUI owns the terminal.
	// Empty means <data_dir>/zenflow.log.
	File string `yaml:"file,omitempty"`
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	Sound   bool `yaml:"sound,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	Quit        string `yaml:"quit,omitempty"`         // default: "q,ctrl+c"
	Help        string `yaml:"help,omitempty"`         // default: "?"
	NextTab     string `yaml:"next_tab,omitempty"`     // default: "tab"
	TabToday    string `yaml:"tab_today,omitempty"`    // default: "1"
	TabRegistry string `yaml:"tab_registry,omitempty"` // default: "2"
	TabDemands  string `yaml:"tab_demands,omitempty"`  // default: "3"

	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g"
	Bottom string `yaml:"bottom,omitempty"` // default: "G"

	Add      string `yaml:"add,omitempty"`      // default: "a"
	Edit     string `yaml:"edit,omitempty"`     // default: "e"
	Progress string `yaml:"progress,omitempty"` // default: "space,enter,d"
	Delete   string `yaml:"delete,omitempty"`   // default: "x"

	Calendar  string `yaml:"calendar,omitempty"`   // default: "c"
	PrevDay   string `yaml:"prev_day,omitempty"`   // default: "h,left"
	NextDay   string `yaml:"next_day,omitempty"`   // default: "l,right"
	PrevMonth string `yaml:"prev_month,omitempty"` // default: "["
	NextMonth string `yaml:"next_month,omitempty"` // default: "]"
	Today     string `yaml:"today,omitempty"`      // default: "t"

	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"

	Undo string `yaml:"undo,omitempty"` // default: "ctrl+z,u"
	Redo string `yaml:"redo,omitempty"` // default: "ctrl+y"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// CalendarExpanded opens the calendar on start when no UI state is saved.
	CalendarExpanded bool `yaml:"calendar_expanded,omitempty"` // default: true

	// NarrowLayoutThreshold is the terminal width below which the calendar
	// is stacked above the list.
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendJSON,
		DataDir: defaultDataDir(),
		Remote: RemoteConfig{
			ItemsTable:     "tasks",
			AreasTable:     "areas",
			DemandsTable:   "demands",
			RetryMax:       3,
			TimeoutSeconds: 15,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Theme: ThemeConfig{
			Primary: "#0F172A", // Slate 900
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
		},
		UX: UXConfig{
			CalendarExpanded:      true,
			NarrowLayoutThreshold: 80,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".zenflow"
	}
	return filepath.Join(home, ".zenflow")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zenflow")
	}
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "zenflow")
}

// Path returns the path of the config file, or "" when no home directory
// can be found.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file at Path, merging it over defaults and applying
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var userCfg Config
			if err := yaml.Unmarshal(data, &userCfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			var doc yaml.Node
			_ = yaml.Unmarshal(data, &doc)
			cfg.mergeFromYAML(&userCfg, &doc)
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRemoteURL); v != "" {
		c.Remote.URL = v
	}
	if v := os.Getenv(EnvRemoteAPIKey); v != "" {
		c.Remote.APIKey = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// mergeNonEmpty applies non-empty strings and positive ints from other.
// Booleans need presence-aware merging and are left alone.
func (c *Config) mergeNonEmpty(other *Config) {
	setString(&c.Backend, strings.ToLower(strings.TrimSpace(other.Backend)))
	setString(&c.DataDir, other.DataDir)
	setString(&c.Database.Path, other.Database.Path)

	setString(&c.Remote.URL, other.Remote.URL)
	setString(&c.Remote.APIKey, other.Remote.APIKey)
	setString(&c.Remote.ItemsTable, other.Remote.ItemsTable)
	setString(&c.Remote.AreasTable, other.Remote.AreasTable)
	setString(&c.Remote.DemandsTable, other.Remote.DemandsTable)
	setInt(&c.Remote.TimeoutSeconds, other.Remote.TimeoutSeconds)

	setString(&c.Server.Addr, other.Server.Addr)

	setString(&c.Theme.Primary, other.Theme.Primary)
	setString(&c.Theme.Accent, other.Theme.Accent)
	setString(&c.Theme.Muted, other.Theme.Muted)

	k, o := &c.Keys, other.Keys
	for dst, v := range map[*string]string{
		&k.Quit: o.Quit, &k.Help: o.Help, &k.NextTab: o.NextTab,
		&k.TabToday: o.TabToday, &k.TabRegistry: o.TabRegistry, &k.TabDemands: o.TabDemands,
		&k.Up: o.Up, &k.Down: o.Down, &k.Top: o.Top, &k.Bottom: o.Bottom,
		&k.Add: o.Add, &k.Edit: o.Edit, &k.Progress: o.Progress, &k.Delete: o.Delete,
		&k.Calendar: o.Calendar, &k.PrevDay: o.PrevDay, &k.NextDay: o.NextDay,
		&k.PrevMonth: o.PrevMonth, &k.NextMonth: o.NextMonth, &k.Today: o.Today,
		&k.Confirm: o.Confirm, &k.Cancel: o.Cancel, &k.Undo: o.Undo, &k.Redo: o.Redo,
	} {
		setString(dst, v)
	}

	setInt(&c.UX.NarrowLayoutThreshold, other.UX.NarrowLayoutThreshold)

	setString(&c.Log.Level, other.Log.Level)
	setString(&c.Log.File, other.Log.File)
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	// Booleans and zero-able ints apply only when present.
	if yamlHasPath(doc, "ux", "calendar_expanded") {
		c.UX.CalendarExpanded = other.UX.CalendarExpanded
	}
	if yamlHasPath(doc, "remote", "retry_max") {
		c.Remote.RetryMax = other.Remote.RetryMax
	}
	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notify.Enabled = other.Notify.Enabled
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notify.Sound = other.Notify.Sound
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	case BackendRemote:
		if strings.TrimSpace(c.Remote.URL) == "" {
			return fmt.Errorf("backend %q needs remote.url (or %s)", BackendRemote, EnvRemoteURL)
		}
	default:
		return fmt.Errorf("unknown backend %q (want json, sqlite or remote)", c.Backend)
	}
	if c.Remote.RetryMax < 0 {
		return fmt.Errorf("remote.retry_max must not be negative")
	}
	return nil
}

// Save writes the configuration to Path.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return nil
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteFile(path, data, 0o700, 0o600)
}

// GetDataDir returns the data directory with ~ expanded.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return expand(c.DataDir)
}

// DatabasePath returns the sqlite file path.
func (c *Config) DatabasePath() string {
	if c.Database.Path == "" {
		return filepath.Join(c.GetDataDir(), "zenflow.db")
	}
	return expand(c.Database.Path)
}

// LogFile returns the log file used while the TUI runs.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return filepath.Join(c.GetDataDir(), "zenflow.log")
	}
	return expand(c.Log.File)
}

func expand(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return p
}
