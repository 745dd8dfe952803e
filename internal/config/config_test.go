package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var overrides = []string{
	"HTTP_ADDR", "DATA_SOURCE", "DATA_SOURCE_BASE_URL", "DATA_SOURCE_API_KEY", "AS_OF",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "CRON_REFRESH", "LOG_LEVEL", "ANALYSIS_WORKERS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range overrides {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "indexrange-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Addr != ":8501" {
		t.Errorf("Server.Addr = %q, want :8501", cfg.Server.Addr)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.DataSource.EquitySuffix != ".NS" {
		t.Errorf("unexpected data source defaults %+v", cfg.DataSource)
	}
	if len(cfg.Indices) != 10 || cfg.Indices[0].ID != "NIFTY 50" || cfg.Indices[9].ID != "NIFTY REALTY" {
		t.Errorf("unexpected default indices %+v", cfg.Indices)
	}
	if cfg.Dashboard.Title != "Nifty June-July Analysis" {
		t.Errorf("Dashboard.Title = %q", cfg.Dashboard.Title)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled by default")
	}

	defs := cfg.IndexDefinitions()
	if !defs[0].Index || defs[0].Symbol != "^NSEI" {
		t.Errorf("unexpected first definition %+v", defs[0])
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9000"
data_source:
  provider: rest
  base_url: "http://localhost:8080"
indices:
  - id: RELIANCE
    symbol: RELIANCE
    equity: true
analysis:
  workers: 4
`)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("AS_OF", "2025-07-15")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("env should override file addr, got %q", cfg.Server.Addr)
	}
	if cfg.DataSource.Provider != "rest" || cfg.Analysis.Workers != 4 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if len(cfg.Indices) != 1 || cfg.IndexDefinitions()[0].Index {
		t.Errorf("expected a single equity entry, got %+v", cfg.Indices)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() returned error: %v", err)
	}

	p, err := cfg.ResolvePeriod(time.Now())
	if err != nil {
		t.Fatalf("ResolvePeriod() returned error: %v", err)
	}
	if got := p.AsOf.Format("2006-01-02"); got != "2025-07-15" {
		t.Errorf("AsOf = %s, want 2025-07-15", got)
	}
	if p.AsOf.Location().String() != "Asia/Kolkata" {
		t.Errorf("expected market time zone, got %s", p.AsOf.Location())
	}
}

func TestPeriod_EmptyAsOfIsToday(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	// 20:00 UTC is already the next day in India.
	now := time.Date(2025, 7, 14, 20, 0, 0, 0, time.UTC)
	p, err := cfg.ResolvePeriod(now)
	if err != nil {
		t.Fatalf("ResolvePeriod() returned error: %v", err)
	}
	if got := p.AsOf.Format("2006-01-02"); got != "2025-07-15" {
		t.Errorf("AsOf = %s, want 2025-07-15", got)
	}
	if p.AsOf.Hour() != 0 {
		t.Errorf("expected midnight, got %s", p.AsOf)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"no indices", func(c *Config) { c.Indices = nil }, "at least one index"},
		{"duplicate id", func(c *Config) { c.Indices = append(c.Indices, c.Indices[0]) }, "duplicate"},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }, "base_url"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "unknown"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }, "together"},
		{"bad date", func(c *Config) { c.Period.PriorEnd = "2025-06-31" }, "prior_end"},
		{"reversed prior", func(c *Config) { c.Period.PriorEnd = "2025-05-01" }, "before"},
		{"next inside prior", func(c *Config) { c.Period.NextStart = "2025-06-15" }, "follow"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}
