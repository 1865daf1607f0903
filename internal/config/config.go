package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/payment"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr     string             `yaml:"addr"`
		Location payment.Location   `yaml:"location"`
		Screen   payment.ScreenSize `yaml:"screen"`
	} `yaml:"server"`
	Recommend struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"recommend"`
	Market struct {
		BaseURL string   `yaml:"base_url"`
		APIKey  string   `yaml:"api_key"`
		Assets  []string `yaml:"assets"`
	} `yaml:"market"`
	Checkout struct {
		// URL is a hosted checkout link. SessionURL and PriceID select
		// session-based checkout instead.
		URL        string `yaml:"url"`
		SessionURL string `yaml:"session_url"`
		PriceID    string `yaml:"price_id"`
		VerifyURL  string `yaml:"verify_url"`
	} `yaml:"checkout"`
	Entitlement struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"entitlement"`
	Storage struct {
		Driver     string `yaml:"driver"`
		FilePath   string `yaml:"file_path"`
		SQLitePath string `yaml:"sqlite_path"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		// AuditPath is the SQLite file for the audit trail. Defaults to SQLitePath.
		AuditPath string `yaml:"audit_path"`
	} `yaml:"storage"`
	Telegram struct {
		BotToken      string `yaml:"bot_token"`
		ChatID        string `yaml:"chat_id"`
		AlertFailures bool   `yaml:"alert_failures"`
	} `yaml:"telegram"`
	Schedule struct {
		MarketRefreshCron string `yaml:"market_refresh_cron"`
	} `yaml:"schedule"`
	Log   logging.LogConfig `yaml:"log"`
	Proxy string            `yaml:"proxy"`
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

	overrides := []struct {
		env string
		dst *string
	}{
		{"RECOMMEND_BASE_URL", &cfg.Recommend.BaseURL},
		{"MARKET_BASE_URL", &cfg.Market.BaseURL},
		{"MARKET_API_KEY", &cfg.Market.APIKey},
		{"CHECKOUT_URL", &cfg.Checkout.URL},
		{"CHECKOUT_SESSION_URL", &cfg.Checkout.SessionURL},
		{"CHECKOUT_PRICE_ID", &cfg.Checkout.PriceID},
		{"VERIFY_URL", &cfg.Checkout.VerifyURL},
		{"STORAGE_DRIVER", &cfg.Storage.Driver},
		{"SQLITE_PATH", &cfg.Storage.SQLitePath},
		{"REDIS_ADDR", &cfg.Storage.Redis.Addr},
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"HTTP_ADDR", &cfg.Server.Addr},
		{"HTTPS_PROXY", &cfg.Proxy},
		{"LOG_LEVEL", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if v := os.Getenv("ENTITLEMENT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Entitlement.TTL = d
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.Location.Origin == "" {
		cfg.Server.Location.Origin = "http://localhost:8080"
	}
	if cfg.Server.Location.Path == "" {
		cfg.Server.Location.Path = "/payment/return"
	}
	if cfg.Server.Screen.Width == 0 {
		cfg.Server.Screen.Width = 1920
	}
	if cfg.Server.Screen.Height == 0 {
		cfg.Server.Screen.Height = 1080
	}
	if cfg.Recommend.Timeout == 0 {
		cfg.Recommend.Timeout = 30 * time.Second
	}
	if len(cfg.Market.Assets) == 0 {
		cfg.Market.Assets = []string{"Bitcoin", "Ethereum", "Solana", "XRP", "Dogecoin"}
	}
	if cfg.Entitlement.TTL == 0 {
		cfg.Entitlement.TTL = 12 * time.Hour
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = "data/kycrypto_state.json"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/kycrypto.db"
	}
	if cfg.Storage.AuditPath == "" {
		cfg.Storage.AuditPath = cfg.Storage.SQLitePath
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "kycrypto:"
	}
	if cfg.Schedule.MarketRefreshCron == "" {
		cfg.Schedule.MarketRefreshCron = "0 */5 * * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Recommend.BaseURL == "" {
		return fmt.Errorf("recommend.base_url is required")
	}
	if c.Checkout.URL == "" && c.Checkout.SessionURL == "" {
		return fmt.Errorf("checkout.url or checkout.session_url is required")
	}
	if c.Checkout.SessionURL != "" && c.Checkout.PriceID == "" {
		return fmt.Errorf("checkout.price_id is required with checkout.session_url")
	}
	if c.Checkout.VerifyURL == "" {
		return fmt.Errorf("checkout.verify_url is required")
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of memory, file, sqlite, redis", c.Storage.Driver)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
