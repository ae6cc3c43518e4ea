package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"ECOSCOPE_UPSTREAM_OPENWEATHER_KEY", "OPENWEATHER_API_KEY",
		"ECOSCOPE_API_PORT", "ECOSCOPE_SYNC_INTERVAL_MINUTES",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) == 0 {
		t.Error("API.CORSOrigins should have a default")
	}

	// Upstream defaults
	if cfg.Upstream.DefaultADM4 != "33.07.09.1020" {
		t.Errorf("Upstream.DefaultADM4: got %q", cfg.Upstream.DefaultADM4)
	}
	if cfg.Upstream.DisdagURL != "" {
		t.Errorf("Upstream.DisdagURL should default to empty, got %q", cfg.Upstream.DisdagURL)
	}

	// Forecast defaults
	if cfg.Forecast.URL != "http://localhost:8010" {
		t.Errorf("Forecast.URL: got %q", cfg.Forecast.URL)
	}
	if cfg.Forecast.DefaultDays != 30 {
		t.Errorf("Forecast.DefaultDays: got %d, want 30", cfg.Forecast.DefaultDays)
	}

	// Sync defaults
	if !cfg.Sync.Enabled {
		t.Error("Sync.Enabled should be true by default")
	}
	if cfg.Sync.IntervalMinutes != 60 {
		t.Errorf("Sync.IntervalMinutes: got %d, want 60", cfg.Sync.IntervalMinutes)
	}
	if cfg.Sync.MarketLocation != "Pasar Induk Wonosobo" {
		t.Errorf("Sync.MarketLocation: got %q", cfg.Sync.MarketLocation)
	}

	// Store defaults
	if cfg.Store.Path != filepath.Join("data", "ecoscope.db") {
		t.Errorf("Store.Path: got %q", cfg.Store.Path)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	// Create a temp config file
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
api:
  port: 9090
upstream:
  disdag_url: "http://localhost:9001"
  openweather_key: "test_openweather_key_123"
  default_adm4: "33.07.13.1008"
forecast:
  url: "http://localhost:9010"
  default_days: 14
sync:
  enabled: false
  interval_minutes: 30
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	// Unset env vars
	os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")
	os.Unsetenv("OPENWEATHER_API_KEY")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Upstream.DisdagURL != "http://localhost:9001" {
		t.Errorf("Upstream.DisdagURL: got %q", cfg.Upstream.DisdagURL)
	}
	if cfg.Upstream.OpenWeatherKey != "test_openweather_key_123" {
		t.Errorf("Upstream.OpenWeatherKey: got %q", cfg.Upstream.OpenWeatherKey)
	}
	if cfg.Upstream.DefaultADM4 != "33.07.13.1008" {
		t.Errorf("Upstream.DefaultADM4: got %q", cfg.Upstream.DefaultADM4)
	}
	if cfg.Forecast.URL != "http://localhost:9010" {
		t.Errorf("Forecast.URL: got %q", cfg.Forecast.URL)
	}
	if cfg.Forecast.DefaultDays != 14 {
		t.Errorf("Forecast.DefaultDays: got %d, want 14", cfg.Forecast.DefaultDays)
	}
	if cfg.Sync.Enabled {
		t.Error("Sync.Enabled should be false from file")
	}
	if cfg.Sync.IntervalMinutes != 30 {
		t.Errorf("Sync.IntervalMinutes: got %d, want 30", cfg.Sync.IntervalMinutes)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}

	os.Setenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY", "ow-key-from-env-123456")
	defer os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")

	overrideFromEnv(cfg)

	if cfg.Upstream.OpenWeatherKey != "ow-key-from-env-123456" {
		t.Errorf("OpenWeatherKey: got %q", cfg.Upstream.OpenWeatherKey)
	}
}

func TestOverrideFromEnvPlainVariable(t *testing.T) {
	os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")
	os.Setenv("OPENWEATHER_API_KEY", "plain-ow-key-789")
	defer os.Unsetenv("OPENWEATHER_API_KEY")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Upstream.OpenWeatherKey != "plain-ow-key-789" {
		t.Errorf("OpenWeatherKey: got %q, want fallback env value", cfg.Upstream.OpenWeatherKey)
	}

	// The prefixed variable wins over the plain one.
	os.Setenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY", "prefixed-key")
	defer os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")
	cfg = &Config{}
	overrideFromEnv(cfg)
	if cfg.Upstream.OpenWeatherKey != "prefixed-key" {
		t.Errorf("OpenWeatherKey: got %q, want prefixed value", cfg.Upstream.OpenWeatherKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")
	os.Unsetenv("OPENWEATHER_API_KEY")

	cfg := &Config{
		Upstream: UpstreamConfig{OpenWeatherKey: "from-config"},
	}
	overrideFromEnv(cfg)

	// Should retain the original value when env is not set
	if cfg.Upstream.OpenWeatherKey != "from-config" {
		t.Errorf("OpenWeatherKey should stay as 'from-config' when env is unset, got %q", cfg.Upstream.OpenWeatherKey)
	}
}

// ── maskKey ──

func TestMaskKeyShort(t *testing.T) {
	// Keys with 8 or fewer characters should be fully masked
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"a", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMaskKeyLong(t *testing.T) {
	// Keys with more than 8 characters show first 3 + ... + last 3
	tests := []struct {
		input string
		want  string
	}{
		{"123456789", "123...789"},
		{"ow-abcdef1234567890xyz", "ow-...xyz"},
		{"ABCDEFGHIJKLMNOP", "ABC...NOP"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysAllEmpty(t *testing.T) {
	os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")

	cfg := &Config{}
	statuses := CheckAPIKeys(cfg)

	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	for _, s := range statuses {
		if s.IsSet {
			t.Errorf("Key %q should not be set", s.Name)
		}
		if s.Source != KeySourceNone {
			t.Errorf("Key %q source: got %q, want %q", s.Name, s.Source, KeySourceNone)
		}
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")

	cfg := &Config{
		Upstream: UpstreamConfig{
			OpenWeatherKey: "ow-test-very-long-key-value",
		},
	}
	statuses := CheckAPIKeys(cfg)

	found := false
	for _, s := range statuses {
		if s.Name == "OpenWeather API Key" {
			found = true
			if !s.IsSet {
				t.Error("OpenWeather key should be set")
			}
			if s.Source != KeySourceConfig {
				t.Errorf("Source: got %q, want %q", s.Source, KeySourceConfig)
			}
			if s.Masked != "ow-...lue" {
				t.Errorf("Masked: got %q, want %q", s.Masked, "ow-...lue")
			}
		}
	}
	if !found {
		t.Error("OpenWeather API Key status not found")
	}
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	os.Setenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY", "ow-env-key-for-testing")
	defer os.Unsetenv("ECOSCOPE_UPSTREAM_OPENWEATHER_KEY")

	cfg := &Config{
		Upstream: UpstreamConfig{
			OpenWeatherKey: "ow-env-key-for-testing",
		},
	}
	statuses := CheckAPIKeys(cfg)

	for _, s := range statuses {
		if s.Name == "OpenWeather API Key" {
			if s.Source != KeySourceEnv {
				t.Errorf("Source: got %q, want %q", s.Source, KeySourceEnv)
			}
		}
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	// No env, no value
	os.Unsetenv("TEST_VAR")
	s := checkKey("Test", "", "TEST_VAR")
	if s.Source != KeySourceNone {
		t.Errorf("empty value: got source %q, want %q", s.Source, KeySourceNone)
	}
	if s.IsSet {
		t.Error("empty value should not be set")
	}

	// Value from config (no env)
	s = checkKey("Test", "config-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}
	if !s.IsSet {
		t.Error("config value should be set")
	}

	// Value from env
	os.Setenv("TEST_VAR", "env-value-long-enough")
	defer os.Unsetenv("TEST_VAR")
	s = checkKey("Test", "env-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}
}

// ── homeDir ──

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	h := homeDir()
	if h == "" {
		t.Error("homeDir() should not return empty string")
	}
}

// ── APIKeySource constants ──

func TestAPIKeySourceConstants(t *testing.T) {
	if string(KeySourceEnv) != "env" {
		t.Errorf("KeySourceEnv: got %q", KeySourceEnv)
	}
	if string(KeySourceConfig) != "config" {
		t.Errorf("KeySourceConfig: got %q", KeySourceConfig)
	}
	if string(KeySourceNone) != "none" {
		t.Errorf("KeySourceNone: got %q", KeySourceNone)
	}
}
