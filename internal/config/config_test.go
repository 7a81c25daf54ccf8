package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Consumer.QuietPeriodSeconds != 2 {
		t.Errorf("quiet period default = %d, want 2", cfg.Consumer.QuietPeriodSeconds)
	}
	if cfg.Consumer.QueueCapacity != 20 {
		t.Errorf("queue capacity default = %d, want 20", cfg.Consumer.QueueCapacity)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver default = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoad_JSON5File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	// JSON5: comments and trailing commas must parse.
	content := `{
		// archiver settings
		channels: {
			telegram: { enabled: true, token: "123:abc", allow_from: [42, "alice"], },
		},
		consumer: { quiet_period_seconds: 5, },
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Channels.Telegram.Enabled {
		t.Error("telegram should be enabled")
	}
	if cfg.Channels.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Channels.Telegram.Token)
	}
	if got := cfg.Consumer.QuietPeriod(); got != 5*time.Second {
		t.Errorf("quiet period = %v, want 5s", got)
	}
	// Numeric allowlist entries become strings.
	want := []string{"42", "alice"}
	if len(cfg.Channels.Telegram.AllowFrom) != len(want) {
		t.Fatalf("allow_from = %v, want %v", cfg.Channels.Telegram.AllowFrom, want)
	}
	for i, w := range want {
		if cfg.Channels.Telegram.AllowFrom[i] != w {
			t.Errorf("allow_from[%d] = %q, want %q", i, cfg.Channels.Telegram.AllowFrom[i], w)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TGVAULT_TELEGRAM_TOKEN", "999:env")
	t.Setenv("TGVAULT_QUIET_PERIOD_SECONDS", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Channels.Telegram.Token != "999:env" {
		t.Errorf("token = %q, want env value", cfg.Channels.Telegram.Token)
	}
	if !cfg.Channels.Telegram.Enabled {
		t.Error("env token should auto-enable the telegram channel")
	}
	if cfg.Consumer.QuietPeriodSeconds != 7 {
		t.Errorf("quiet period = %d, want 7", cfg.Consumer.QuietPeriodSeconds)
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in, want string
	}{
		{"~/.tgvault/downloads", home + "/.tgvault/downloads"},
		{"/abs/path", "/abs/path"},
		{"", ""},
		{"~", home},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
