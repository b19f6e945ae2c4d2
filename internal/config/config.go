package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Credentials are optional
// at startup; each component degrades gracefully when its credential is
// missing at the point of use.
type Config struct {
	Gemini struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gemini"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Market struct {
		BaseURL          string `yaml:"base_url"`
		FallbackCurrency string `yaml:"fallback_currency"`
		TimeoutSeconds   int    `yaml:"timeout_seconds"`
	} `yaml:"market"`
	Advisor struct {
		TrendThreshold float64 `yaml:"trend_threshold"`
	} `yaml:"advisor"`
	Schedule struct {
		Cron       string  `yaml:"cron"`
		CoinSymbol string  `yaml:"coin_symbol"`
		VsCurrency string  `yaml:"vs_currency"`
		Capital    float64 `yaml:"capital"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_GROUP_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TREND_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Advisor.TrendThreshold = threshold
		}
	}

	// Defaults
	if cfg.Market.FallbackCurrency == "" {
		cfg.Market.FallbackCurrency = "usd"
	}
	if cfg.Market.TimeoutSeconds == 0 {
		cfg.Market.TimeoutSeconds = 30
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 60
	}
	if cfg.Advisor.TrendThreshold == 0 {
		cfg.Advisor.TrendThreshold = 1.0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks structural sanity. Credentials are deliberately not
// required here: a bot without a Gemini key or Telegram token still
// starts and reports the gap when the credential is actually needed.
func (c *Config) Validate() error {
	if c.Advisor.TrendThreshold <= 0 {
		return fmt.Errorf("advisor.trend_threshold must be positive")
	}
	if c.Market.TimeoutSeconds <= 0 {
		return fmt.Errorf("market.timeout_seconds must be positive")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return fmt.Errorf("gemini.timeout_seconds must be positive")
	}
	if c.Schedule.Cron != "" {
		if c.Schedule.CoinSymbol == "" {
			return fmt.Errorf("schedule.coin_symbol is required when schedule.cron is set")
		}
		if c.Schedule.Capital <= 0 {
			return fmt.Errorf("schedule.capital must be positive when schedule.cron is set")
		}
	}
	return nil
}
