package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"savetrack/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ProviderConfig chooses where historical prices come from.
type ProviderConfig struct {
	Name           string        `mapstructure:"name"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	UserAgent      string        `mapstructure:"user_agent"`
	Yahoo          YahooConfig   `mapstructure:"yahoo"`
	Stooq          StooqConfig   `mapstructure:"stooq"`
	CSV            CSVConfig     `mapstructure:"csv"`
}

// YahooConfig covers the chart API.
type YahooConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// StooqConfig covers the daily CSV download endpoint.
type StooqConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Suffix  string `mapstructure:"suffix"`
}

// CSVConfig points at a directory of <SYMBOL>.csv files.
type CSVConfig struct {
	Dir string `mapstructure:"dir"`
}

// StrategyConfig tunes the moving average signal.
type StrategyConfig struct {
	Window      int    `mapstructure:"window"`
	DefaultFrom string `mapstructure:"default_from"`
	ShowLast    int    `mapstructure:"show_last"`
	// Watchlist tickers are recomputed by the API server every RefreshInterval.
	Watchlist       []string      `mapstructure:"watchlist"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig enables crossover notifications.
type AlertingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cooldown is the minimum gap between two alerts for the same ticker.
	Cooldown time.Duration  `mapstructure:"cooldown"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// ServerConfig configures the JSON API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SAVETRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "savetrack")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.max_size_mb", 50)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 28)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/savings.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("provider.name", "yahoo")
	v.SetDefault("provider.request_timeout", "15s")
	v.SetDefault("provider.retry_count", 2)
	v.SetDefault("provider.user_agent", "savetrack/1.0")
	v.SetDefault("provider.yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.stooq.base_url", "https://stooq.com")
	v.SetDefault("provider.stooq.suffix", ".us")
	v.SetDefault("provider.csv.dir", "data/prices")

	v.SetDefault("strategy.window", 200)
	v.SetDefault("strategy.default_from", "2015-01-01")
	v.SetDefault("strategy.show_last", 10)
	v.SetDefault("strategy.watchlist", []string{})
	v.SetDefault("strategy.refresh_interval", "24h")
	v.SetDefault("strategy.startup_delay", "0s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.cooldown", "12h")
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")

	v.SetDefault("export.max_data_points", 5000)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "", "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	switch strings.ToLower(c.Provider.Name) {
	case "yahoo", "stooq", "csv":
	default:
		return fmt.Errorf("provider.name must be yahoo, stooq or csv, got %q", c.Provider.Name)
	}

	if c.Strategy.Window <= 0 {
		return fmt.Errorf("strategy.window must be greater than zero")
	}
	if len(c.Strategy.Watchlist) > 0 && c.Strategy.RefreshInterval <= 0 {
		return fmt.Errorf("strategy.refresh_interval must be positive when a watchlist is set")
	}
	if c.Strategy.StartupDelay < 0 {
		return fmt.Errorf("strategy.startup_delay must not be negative")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown must not be negative")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// ResolveShowLast returns either the CLI override or config default.
func (c *Config) ResolveShowLast(override int) int {
	if override > 0 {
		return override
	}
	return c.Strategy.ShowLast
}
