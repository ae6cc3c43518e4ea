// Package config handles configuration loading for EcoScope.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Upstream UpstreamConfig `mapstructure:"upstream" yaml:"upstream"`
	Forecast ForecastConfig `mapstructure:"forecast" yaml:"forecast"`
	Sync     SyncConfig     `mapstructure:"sync"     yaml:"sync"`
	Store    StoreConfig    `mapstructure:"store"    yaml:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// UpstreamConfig holds the external API endpoints and credentials.
type UpstreamConfig struct {
	DisdagURL      string `mapstructure:"disdag_url"       yaml:"disdag_url"`
	BMKGURL        string `mapstructure:"bmkg_url"         yaml:"bmkg_url"`
	DisdukcapilURL string `mapstructure:"disdukcapil_url"  yaml:"disdukcapil_url"`
	OpenWeatherKey string `mapstructure:"openweather_key"  yaml:"openweather_key"`
	DefaultADM4    string `mapstructure:"default_adm4"     yaml:"default_adm4"`
}

// ForecastConfig holds the forecasting service settings.
type ForecastConfig struct {
	URL         string `mapstructure:"url"          yaml:"url"`
	DefaultDays int    `mapstructure:"default_days" yaml:"default_days"`
}

// SyncConfig holds the market sync scheduler settings.
type SyncConfig struct {
	Enabled         bool   `mapstructure:"enabled"          yaml:"enabled"`
	IntervalMinutes int    `mapstructure:"interval_minutes" yaml:"interval_minutes"`
	MarketLocation  string `mapstructure:"market_location"  yaml:"market_location"`
}

// StoreConfig holds the local database settings.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.ecoscope/config.yaml (home directory)
//  3. /etc/ecoscope/config.yaml (system)
//
// Environment variables override config file values.
// Format: ECOSCOPE_<SECTION>_<KEY>, e.g., ECOSCOPE_UPSTREAM_OPENWEATHER_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".ecoscope"))
	v.AddConfigPath("/etc/ecoscope")

	v.SetEnvPrefix("ECOSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("ECOSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Upstream defaults; empty URLs select each client's production endpoint
	v.SetDefault("upstream.disdag_url", "")
	v.SetDefault("upstream.bmkg_url", "")
	v.SetDefault("upstream.disdukcapil_url", "")
	v.SetDefault("upstream.default_adm4", "33.07.09.1020") // Wonosobo town

	// Forecast defaults
	v.SetDefault("forecast.url", "http://localhost:8010")
	v.SetDefault("forecast.default_days", 30)

	// Sync defaults
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.interval_minutes", 60)
	v.SetDefault("sync.market_location", "Pasar Induk Wonosobo")

	// Store defaults
	v.SetDefault("store.path", filepath.Join("data", "ecoscope.db"))

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY"); key != "" {
		cfg.Upstream.OpenWeatherKey = key
	}
	// Accept the plain OpenWeather variable name too.
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" && cfg.Upstream.OpenWeatherKey == "" {
		cfg.Upstream.OpenWeatherKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
