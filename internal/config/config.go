package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultWatchlist is the fixed universe of tickers.
var DefaultWatchlist = []string{
	"SPY", "QQQ", "IWM", "DIA", "VOO",
	"AAPL", "TSLA", "NVDA", "AMD", "MSFT",
	"AMZN", "GOOGL", "META", "NFLX", "SOFI",
	"PLTR", "F", "RIVN", "LCID", "NIO",
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		ChatID   string  `yaml:"chat_id"` // initial auto-post channel
		AdminIDs []int64 `yaml:"admin_ids"`
	} `yaml:"telegram"`
	Providers struct {
		AlphaVantage struct {
			BaseURL string `yaml:"base_url" validate:"omitempty,url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"alpha_vantage"`
		Yahoo struct {
			BaseURL string `yaml:"base_url" validate:"omitempty,url"`
		} `yaml:"yahoo"`
		Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
		RatePerSec float64       `yaml:"rate_per_sec" validate:"gt=0"`
		Burst      int           `yaml:"burst" validate:"gte=1"`
	} `yaml:"providers"`
	Schedule struct {
		RefreshCron  string `yaml:"refresh_cron" validate:"required"`
		AutoPostCron string `yaml:"auto_post_cron" validate:"required"`
		Timezone     string `yaml:"timezone" validate:"required"`
	} `yaml:"schedule"`
	Desk struct {
		Watchlist      []string      `yaml:"watchlist" validate:"min=1,dive,required"`
		MaxCandidates  int           `yaml:"max_candidates" validate:"gte=1"`
		Target         int           `yaml:"target" validate:"gte=1"`
		CandidateDelay time.Duration `yaml:"candidate_delay" validate:"gte=0"`
		MessageDelay   time.Duration `yaml:"message_delay" validate:"gte=0"`
		Seed           uint64        `yaml:"seed"` // 0 means unseeded
	} `yaml:"desk"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" validate:"oneof=console json"`
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env and the YAML file, applies environment variable overrides
// and defaults, then checks field constraints.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_ADMIN_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ADMIN_IDS: %w", err)
		}
		c.Telegram.AdminIDs = ids
	}
	if v := os.Getenv("ALPHA_VANTAGE_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 8 * time.Second
	}
	if c.Providers.RatePerSec == 0 {
		c.Providers.RatePerSec = 1
	}
	if c.Providers.Burst == 0 {
		c.Providers.Burst = 2
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 */4 * * *"
	}
	if c.Schedule.AutoPostCron == "" {
		c.Schedule.AutoPostCron = "0 30 9 * * 1-5"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if len(c.Desk.Watchlist) == 0 {
		c.Desk.Watchlist = append([]string(nil), DefaultWatchlist...)
	}
	if c.Desk.MaxCandidates == 0 {
		c.Desk.MaxCandidates = 15
	}
	if c.Desk.Target == 0 {
		c.Desk.Target = 7
	}
	if c.Desk.CandidateDelay == 0 {
		c.Desk.CandidateDelay = 800 * time.Millisecond
	}
	if c.Desk.MessageDelay == 0 {
		c.Desk.MessageDelay = 2500 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the fields required to run the bot.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

// Location returns the scheduling time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
