package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"IndexRange/internal/model"
)

// IndexConfig is one tracked index entry.
type IndexConfig struct {
	ID     string `yaml:"id"`
	Symbol string `yaml:"symbol"`
	Equity bool   `yaml:"equity"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		Provider       string `yaml:"provider"` // yahoo, rest or mock
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		EquitySuffix   string `yaml:"equity_suffix"`
		RequestsPerSec int    `yaml:"requests_per_sec"`
		TimeoutSec     int    `yaml:"timeout_sec"`
	} `yaml:"data_source"`
	Period struct {
		PriorStart string `yaml:"prior_start"`
		PriorEnd   string `yaml:"prior_end"`
		NextStart  string `yaml:"next_start"`
		AsOf       string `yaml:"as_of"` // empty means today
	} `yaml:"period"`
	Timezone string        `yaml:"timezone"`
	Indices  []IndexConfig `yaml:"indices"`
	Analysis struct {
		Workers int `yaml:"workers"`
	} `yaml:"analysis"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Dashboard struct {
		Title        string `yaml:"title"`
		ReportPrefix string `yaml:"report_prefix"`
	} `yaml:"dashboard"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultIndices is the NIFTY sector set tracked when none is configured.
var DefaultIndices = []IndexConfig{
	{ID: "NIFTY 50", Symbol: "^NSEI"},
	{ID: "NIFTY BANK", Symbol: "^NSEBANK"},
	{ID: "NIFTY IT", Symbol: "^CNXIT"},
	{ID: "NIFTY FMCG", Symbol: "^CNXFMCG"},
	{ID: "NIFTY PHARMA", Symbol: "^CNXPHARMA"},
	{ID: "NIFTY AUTO", Symbol: "^CNXAUTO"},
	{ID: "NIFTY METAL", Symbol: "^CNXMETAL"},
	{ID: "NIFTY FINANCIAL SERVICES", Symbol: "NIFTY_FIN_SERVICE.NS"},
	{ID: "NIFTY ENERGY", Symbol: "^CNXENERGY"},
	{ID: "NIFTY REALTY", Symbol: "^CNXREALTY"},
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("AS_OF"); v != "" {
		cfg.Period.AsOf = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ANALYSIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = n
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.EquitySuffix == "" {
		cfg.DataSource.EquitySuffix = ".NS"
	}
	if cfg.DataSource.RequestsPerSec == 0 {
		cfg.DataSource.RequestsPerSec = 2
	}
	if cfg.DataSource.TimeoutSec == 0 {
		cfg.DataSource.TimeoutSec = 30
	}
	if cfg.Period.PriorStart == "" {
		cfg.Period.PriorStart = "2025-06-01"
	}
	if cfg.Period.PriorEnd == "" {
		cfg.Period.PriorEnd = "2025-06-30"
	}
	if cfg.Period.NextStart == "" {
		cfg.Period.NextStart = "2025-07-01"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Kolkata"
	}
	if len(cfg.Indices) == 0 {
		cfg.Indices = append([]IndexConfig(nil), DefaultIndices...)
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 1
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 16 * * 1-5"
	}
	if cfg.Dashboard.Title == "" {
		cfg.Dashboard.Title = "Nifty June-July Analysis"
	}
	if cfg.Dashboard.ReportPrefix == "" {
		cfg.Dashboard.ReportPrefix = "nifty"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Indices) == 0 {
		return fmt.Errorf("at least one index is required")
	}
	seen := make(map[string]bool, len(c.Indices))
	for _, ix := range c.Indices {
		if ix.ID == "" || ix.Symbol == "" {
			return fmt.Errorf("index entries need both id and symbol")
		}
		if seen[ix.ID] {
			return fmt.Errorf("duplicate index id %q", ix.ID)
		}
		seen[ix.ID] = true
	}

	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be positive")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	p, err := c.ResolvePeriod(time.Now())
	if err != nil {
		return err
	}
	if p.PriorEnd.Before(p.PriorStart) {
		return fmt.Errorf("period.prior_end is before period.prior_start")
	}
	if !p.NextStart.After(p.PriorEnd) {
		return fmt.Errorf("period.next_start must follow period.prior_end")
	}
	return nil
}

// TelegramEnabled reports whether bot credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location loads the configured market time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IndexDefinitions converts the configured entries into index definitions.
func (c *Config) IndexDefinitions() []model.IndexDefinition {
	defs := make([]model.IndexDefinition, len(c.Indices))
	for i, ix := range c.Indices {
		defs[i] = model.IndexDefinition{ID: ix.ID, Symbol: ix.Symbol, Index: !ix.Equity}
	}
	return defs
}

// ResolvePeriod resolves the configured boundaries in the market time zone. An
// empty as-of date resolves to the calendar day of now.
func (c *Config) ResolvePeriod(now time.Time) (model.Period, error) {
	loc, err := c.Location()
	if err != nil {
		return model.Period{}, err
	}
	parse := func(name, v string) (time.Time, error) {
		t, err := time.ParseInLocation(model.DateLayout, v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("period.%s: %w", name, err)
		}
		return t, nil
	}

	var p model.Period
	if p.PriorStart, err = parse("prior_start", c.Period.PriorStart); err != nil {
		return p, err
	}
	if p.PriorEnd, err = parse("prior_end", c.Period.PriorEnd); err != nil {
		return p, err
	}
	if p.NextStart, err = parse("next_start", c.Period.NextStart); err != nil {
		return p, err
	}
	if c.Period.AsOf == "" {
		p.AsOf = model.Day(now.In(loc))
	} else if p.AsOf, err = parse("as_of", c.Period.AsOf); err != nil {
		return p, err
	}
	return p, nil
}
