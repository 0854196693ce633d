package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// StorageConfig controls where the task collection is persisted.
type StorageConfig struct {
	// Path is the SQLite database file backing the key-value store.
	Path string `mapstructure:"path" yaml:"path"`
}

// CalendarConfig defines the working calendar used when rendering
// durations for the issue tracker (e.g. "1w 2d").
type CalendarConfig struct {
	HoursPerDay int `mapstructure:"hours_per_day" yaml:"hours_per_day"`
	DaysPerWeek int `mapstructure:"days_per_week" yaml:"days_per_week"`
}

// SyncConfig holds issue tracker synchronization preferences.
type SyncConfig struct {
	// OnStatusChange reconciles a linked task with the tracker whenever
	// its timer stops.
	OnStatusChange bool `mapstructure:"on_status_change" yaml:"on_status_change"`

	// UseKeyring stores the API token in the system keyring instead of
	// the settings record.
	UseKeyring bool `mapstructure:"use_keyring" yaml:"use_keyring"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme             string `mapstructure:"theme" yaml:"theme"`
	RefreshIntervalMs int    `mapstructure:"refresh_interval_ms" yaml:"refresh_interval_ms"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/timetracker, falling back to the working
// directory when the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "timetracker")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/timetracker/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDatabasePath returns ~/.config/timetracker/timetracker.db.
func DefaultDatabasePath() string {
	return filepath.Join(configDir(), "timetracker.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Path: DefaultDatabasePath(),
		},
		Calendar: CalendarConfig{
			HoursPerDay: 8,
			DaysPerWeek: 5,
		},
		Display: DisplayConfig{
			Theme:             "default",
			RefreshIntervalMs: 1000,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TIMETRACKER_ override file values
// (e.g. TIMETRACKER_STORAGE_PATH). If the file does not exist, defaults
// are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TIMETRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	defaults := DefaultAppConfig()
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("calendar.hours_per_day", defaults.Calendar.HoursPerDay)
	v.SetDefault("calendar.days_per_week", defaults.Calendar.DaysPerWeek)
	v.SetDefault("sync.on_status_change", false)
	v.SetDefault("sync.use_keyring", false)
	v.SetDefault("display.theme", defaults.Display.Theme)
	v.SetDefault("display.refresh_interval_ms", defaults.Display.RefreshIntervalMs)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Calendar.HoursPerDay <= 0 {
		cfg.Calendar.HoursPerDay = defaults.Calendar.HoursPerDay
	}
	if cfg.Calendar.DaysPerWeek <= 0 {
		cfg.Calendar.DaysPerWeek = defaults.Calendar.DaysPerWeek
	}
	if cfg.Display.RefreshIntervalMs <= 0 {
		cfg.Display.RefreshIntervalMs = defaults.Display.RefreshIntervalMs
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaults.Storage.Path
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("calendar", cfg.Calendar)
	v.Set("sync", cfg.Sync)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
