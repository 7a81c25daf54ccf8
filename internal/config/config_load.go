package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Downloads: DownloadsConfig{
			Dir:          "~/.tgvault/downloads",
			MaxImageEdge: 4096,
		},
		Consumer: ConsumerConfig{
			QuietPeriodSeconds: 2,
			QueueCapacity:      20,
			GroupSweepSeconds:  30,
			GroupStaleSeconds:  90,
			GroupCompleteSize:  2,
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			SQLitePath: "~/.tgvault/archive.db",
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: "tgvault",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	envStr("TGVAULT_TELEGRAM_TOKEN", &c.Channels.Telegram.Token)
	envStr("TGVAULT_DOWNLOAD_DIR", &c.Downloads.Dir)
	envStr("TGVAULT_SQLITE_PATH", &c.Database.SQLitePath)
	envStr("TGVAULT_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("TGVAULT_DB_DRIVER", &c.Database.Driver)

	envInt("TGVAULT_QUIET_PERIOD_SECONDS", &c.Consumer.QuietPeriodSeconds)
	envInt("TGVAULT_QUEUE_CAPACITY", &c.Consumer.QueueCapacity)

	// Auto-enable the channel when credentials arrive via env.
	if c.Channels.Telegram.Token != "" {
		c.Channels.Telegram.Enabled = true
	}

	// Telemetry
	envStr("TGVAULT_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("TGVAULT_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("TGVAULT_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("TGVAULT_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TGVAULT_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
}

// Save writes the config to a JSON file. The Telegram token is kept in
// the file only when the caller left it there on purpose (onboard).
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DownloadDir returns the expanded download directory.
func (c *Config) DownloadDir() string {
	return ExpandHome(c.Downloads.Dir)
}

// SQLitePath returns the expanded SQLite database path.
func (c *Config) SQLitePath() string {
	return ExpandHome(c.Database.SQLitePath)
}

// ExpandHome replaces leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
