package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CanvasConfig holds the settings for the remote Canvas API.
type CanvasConfig struct {
	// BaseURL is the root URL of the Canvas instance, e.g. https://canvas.example.edu.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PerPage is the page size requested from paginated endpoints.
	PerPage int `mapstructure:"per_page" yaml:"per_page"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times a rate-limited request is retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// CacheConfig holds settings for the on-disk response cache.
type CacheConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	MaxBytes uint64 `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// StoreConfig holds settings for the local sqlite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// IndentWidth is the number of columns per item indent level.
	IndentWidth int `mapstructure:"indent_width" yaml:"indent_width"`
}

// EventsConfig holds settings for the edit notification bus.
type EventsConfig struct {
	// RetentionSec is how long a published notification stays available
	// to subscribers that arrive later.
	RetentionSec int `mapstructure:"retention_sec" yaml:"retention_sec"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// MetricsConfig holds settings for the prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Canvas  CanvasConfig  `mapstructure:"canvas" yaml:"canvas"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Events  EventsConfig  `mapstructure:"events" yaml:"events"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ConfigDir returns ~/.config/modulesync, or the working directory when
// the home directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "modulesync")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/modulesync/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Canvas: CanvasConfig{
			PerPage:    50,
			TimeoutSec: 30,
			MaxRetries: 3,
		},
		Cache: CacheConfig{
			Dir:      filepath.Join(dir, "cache"),
			MaxBytes: 1 << 20,
		},
		Store: StoreConfig{
			Path: filepath.Join(dir, "modulesync.db"),
		},
		Display: DisplayConfig{
			Theme:       "default",
			IndentWidth: 2,
		},
		Events: EventsConfig{
			RetentionSec: 300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "CONSOLE",
			File:   filepath.Join(dir, "modulesync.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := DefaultAppConfig()
	v.SetDefault("canvas.per_page", def.Canvas.PerPage)
	v.SetDefault("canvas.timeout_sec", def.Canvas.TimeoutSec)
	v.SetDefault("canvas.max_retries", def.Canvas.MaxRetries)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("cache.max_bytes", def.Cache.MaxBytes)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("display.indent_width", def.Display.IndentWidth)
	v.SetDefault("events.retention_sec", def.Events.RetentionSec)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)

	v.SetEnvPrefix("MODULESYNC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Canvas.PerPage <= 0 {
		cfg.Canvas.PerPage = def.Canvas.PerPage
	}
	if cfg.Display.IndentWidth < 0 {
		cfg.Display.IndentWidth = def.Display.IndentWidth
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

	v.Set("canvas", cfg.Canvas)
	v.Set("cache", cfg.Cache)
	v.Set("store", cfg.Store)
	v.Set("display", cfg.Display)
	v.Set("events", cfg.Events)
	v.Set("log", cfg.Log)
	v.Set("metrics", cfg.Metrics)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
