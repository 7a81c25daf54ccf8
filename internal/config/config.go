package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON.
// Telegram user IDs are numeric and people paste them unquoted.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for TgVault.
type Config struct {
	Channels  ChannelsConfig  `json:"channels"`
	Downloads DownloadsConfig `json:"downloads"`
	Consumer  ConsumerConfig  `json:"consumer"`
	Database  DatabaseConfig  `json:"database,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
}

// ChannelsConfig holds per-platform channel settings.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Enabled       bool                `json:"enabled"`
	Token         string              `json:"token,omitempty"` // prefer env TGVAULT_TELEGRAM_TOKEN
	AllowFrom     FlexibleStringSlice `json:"allow_from,omitempty"`
	Proxy         string              `json:"proxy,omitempty"`
	MediaMaxBytes int64               `json:"media_max_bytes,omitempty"` // 0 = Bot API default (20MB)
}

// DownloadsConfig configures where fetched media lands on disk and the
// optional retention sweep of old files.
type DownloadsConfig struct {
	Dir           string `json:"dir"`
	MaxImageEdge  int    `json:"max_image_edge,omitempty"`  // long-edge cap for photo normalization (0 = default)
	RetentionCron string `json:"retention_cron,omitempty"`  // cron expression; empty disables retention
	RetentionDays int    `json:"retention_days,omitempty"`  // files older than this are removed by the sweep
}

// ConsumerConfig tunes the debounced batch consumer and the media-group
// cache. All values are fixed at startup.
type ConsumerConfig struct {
	QuietPeriodSeconds int `json:"quiet_period_seconds,omitempty"` // flush poll interval (default 2)
	QueueCapacity      int `json:"queue_capacity,omitempty"`       // bounded inbound queue (default 20)
	GroupSweepSeconds  int `json:"group_sweep_seconds,omitempty"`  // media-group sweep tick (default 30)
	GroupStaleSeconds  int `json:"group_stale_seconds,omitempty"`  // incomplete entries older than this are evicted (default 90)
	GroupCompleteSize  int `json:"group_complete_size,omitempty"`  // album member count treated as complete (default 2)
}

// QuietPeriod returns the consumer quiet period as a duration.
func (c ConsumerConfig) QuietPeriod() time.Duration {
	return time.Duration(c.QuietPeriodSeconds) * time.Second
}

// GroupSweepInterval returns the media-group sweep tick as a duration.
func (c ConsumerConfig) GroupSweepInterval() time.Duration {
	return time.Duration(c.GroupSweepSeconds) * time.Second
}

// GroupStaleAge returns the media-group stale age as a duration.
func (c ConsumerConfig) GroupStaleAge() time.Duration {
	return time.Duration(c.GroupStaleSeconds) * time.Second
}

// Supported archive database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects the archive backend.
// PostgresDSN is NEVER read from config.json (secret) — only from env TGVAULT_POSTGRES_DSN.
type DatabaseConfig struct {
	Driver      string `json:"driver,omitempty"` // "sqlite" (default) or "postgres"
	SQLitePath  string `json:"sqlite_path,omitempty"`
	PostgresDSN string `json:"-"` // from env TGVAULT_POSTGRES_DSN only
}

// TelemetryConfig configures OpenTelemetry trace export.
// When enabled, spans are exported to an OTLP-compatible backend
// (Jaeger, Tempo, Datadog, etc.).
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled,omitempty"`      // enable OTLP export (default false)
	Endpoint    string `json:"endpoint,omitempty"`     // OTLP endpoint (e.g. "localhost:4317")
	Protocol    string `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	ServiceName string `json:"service_name,omitempty"` // resource service.name (default "tgvault")
	Insecure    bool   `json:"insecure,omitempty"`     // disable TLS for the exporter
}
