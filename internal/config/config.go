package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	DataSource struct {
		BaseURL       string `yaml:"base_url"`
		APIKey        string `yaml:"api_key"`
		DefaultSymbol string `yaml:"default_symbol"`
		HistoryDays   int    `yaml:"history_days"`
	} `yaml:"data_source"`
	Aliases map[string]string `yaml:"aliases"`
	Cache   struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		PriceTTL      time.Duration `yaml:"price_ttl"`
		NewsTTL       time.Duration `yaml:"news_ttl"`
	} `yaml:"cache"`
	News struct {
		Language string `yaml:"language"`
		Country  string `yaml:"country"`
	} `yaml:"news"`
	Advisor struct {
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"advisor"`
	Sheet struct {
		Store             string `yaml:"store"`
		SpreadsheetURL    string `yaml:"spreadsheet_url"`
		GoogleCredentials string `yaml:"google_credentials"`
		UsersWorksheet    string `yaml:"users_worksheet"`
		PortfolioSheet    string `yaml:"portfolio_worksheet"`
	} `yaml:"sheet"`
	Session struct {
		IdleTimeout time.Duration `yaml:"idle_timeout"`
		PurgeCron   string        `yaml:"purge_cron"`
	} `yaml:"session"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ScanCron   string `yaml:"scan_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Watchlist []string `yaml:"watchlist"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads a .env file if present, then
// applies environment variable overrides and defaults.
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

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("GEMINI_API_KEY", &c.Advisor.APIKey)
	setString("GEMINI_MODEL", &c.Advisor.Model)
	setString("SPREADSHEET_URL", &c.Sheet.SpreadsheetURL)
	setString("GOOGLE_CREDENTIALS", &c.Sheet.GoogleCredentials)
	setString("SHEET_STORE", &c.Sheet.Store)
	setString("HUB_ADDR", &c.Server.Addr)
	setString("REDIS_ADDR", &c.Cache.RedisAddr)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("VSTRADER_BASE_URL", &c.DataSource.BaseURL)
	setString("VSTRADER_API_KEY", &c.DataSource.APIKey)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("LOG_FILE", &c.Logging.File)
	setString("CRON_SCAN", &c.Schedule.ScanCron)

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Schedule.RunOnStart = b
		}
	}

	// A spreadsheet URL with credentials means the Google backend. Set in the
	// environment, the pair beats the file's store; only SHEET_STORE beats it.
	envPair := os.Getenv("SPREADSHEET_URL") != "" && os.Getenv("GOOGLE_CREDENTIALS") != ""
	filePair := c.Sheet.Store == "" && c.Sheet.SpreadsheetURL != "" && c.Sheet.GoogleCredentials != ""
	if os.Getenv("SHEET_STORE") == "" && (envPair || filePair) {
		c.Sheet.Store = "gsheets:" + c.Sheet.SpreadsheetURL
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.DataSource.DefaultSymbol == "" {
		c.DataSource.DefaultSymbol = "BTC-USD"
	}
	if c.DataSource.HistoryDays == 0 {
		c.DataSource.HistoryDays = 365
	}
	if c.Cache.PriceTTL == 0 {
		c.Cache.PriceTTL = 300 * time.Second
	}
	if c.Cache.NewsTTL == 0 {
		c.Cache.NewsTTL = 600 * time.Second
	}
	if c.News.Language == "" {
		c.News.Language = "it"
	}
	if c.News.Country == "" {
		c.News.Country = strings.ToUpper(c.News.Language)
	}
	if c.Advisor.Model == "" {
		c.Advisor.Model = "gemini-2.0-flash"
	}
	if c.Advisor.Language == "" {
		c.Advisor.Language = "Italian"
	}
	if c.Sheet.Store == "" {
		c.Sheet.Store = "sqlite:data/hub.db"
	}
	if c.Sheet.UsersWorksheet == "" {
		c.Sheet.UsersWorksheet = "Utenti"
	}
	if c.Sheet.PortfolioSheet == "" {
		c.Sheet.PortfolioSheet = "Portafoglio"
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = 12 * time.Hour
	}
	if c.Session.PurgeCron == "" {
		c.Session.PurgeCron = "0 */15 * * * *"
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 0 22 * * 1-5"
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"BTC-USD", "ETH-USD", "NVDA", "AAPL"}
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/hub_history.db"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Advisor.APIKey == "" {
		return fmt.Errorf("advisor.api_key (GEMINI_API_KEY) is required")
	}
	if strings.HasPrefix(c.Sheet.Store, "gsheets:") && c.Sheet.GoogleCredentials == "" {
		return fmt.Errorf("sheet.google_credentials is required for the gsheets store")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Cache.PriceTTL < 0 || c.Cache.NewsTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.DataSource.HistoryDays < 30 {
		return fmt.Errorf("data_source.history_days must be at least 30")
	}
	return nil
}

// TelegramEnabled reports whether the bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GoogleCredentialsJSON returns the service-account JSON. The setting may
// hold the JSON itself or a path to it.
func (c *Config) GoogleCredentialsJSON() ([]byte, error) {
	v := strings.TrimSpace(c.Sheet.GoogleCredentials)
	if v == "" || strings.HasPrefix(v, "{") {
		return []byte(v), nil
	}
	data, err := os.ReadFile(v)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	return data, nil
}
