// Package config loads the dashboard server configuration from an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Source modes.
const (
	SourceLive   = "live"
	SourceMock   = "mock"
	SourceRemote = "remote"
)

var ErrInvalid = errors.New("invalid configuration")

type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json or console
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
	Watch   bool   `mapstructure:"watch" yaml:"watch"` // file backend only
}

// SourceConfig selects where widget data comes from.
//
// WARNING: contains API keys and should not be logged.
type SourceConfig struct {
	Mode       string        `mapstructure:"mode" yaml:"mode"`
	RemoteURL  string        `mapstructure:"remote_url" yaml:"remote_url"`
	FinnhubKey string        `mapstructure:"finnhub_key" yaml:"finnhub_key"` // Secret
	NewsAPIKey string        `mapstructure:"newsapi_key" yaml:"newsapi_key"` // Secret
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Attempts   uint          `mapstructure:"attempts" yaml:"attempts"`
}

type IntervalConfig struct {
	Stocks time.Duration `mapstructure:"stocks" yaml:"stocks"`
	News   time.Duration `mapstructure:"news" yaml:"news"`
	Sports time.Duration `mapstructure:"sports" yaml:"sports"`
}

type Config struct {
	Server    ServerConfig   `mapstructure:"server" yaml:"server"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
	Store     StoreConfig    `mapstructure:"store" yaml:"store"`
	Source    SourceConfig   `mapstructure:"source" yaml:"source"`
	Intervals IntervalConfig `mapstructure:"intervals" yaml:"intervals"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

var defaults = map[string]any{
	"server.port":             8080,
	"server.shutdown_timeout": 10 * time.Second,
	"log.level":               "info",
	"log.format":              "json",
	"store.backend":           BackendFile,
	"store.path":              "data/dashboard.json",
	"store.watch":             true,
	"source.mode":             SourceLive,
	"source.timeout":          10 * time.Second,
	"source.rate_limit":       10.0,
	"source.attempts":         3,
	"intervals.stocks":        5 * time.Second,
	"intervals.news":          60 * time.Second,
	"intervals.sports":        30 * time.Second,
}

// envBindings maps config keys to environment variables. The first name is
// preferred; later names are legacy fallbacks.
var envBindings = map[string][]string{
	"server.port":             {"DASHBOARD_PORT", "PORT"},
	"server.shutdown_timeout": {"DASHBOARD_SHUTDOWN_TIMEOUT"},
	"log.level":               {"DASHBOARD_LOG_LEVEL", "LOG_LEVEL"},
	"log.format":              {"DASHBOARD_LOG_FORMAT"},
	"store.backend":           {"DASHBOARD_STORE_BACKEND"},
	"store.path":              {"DASHBOARD_STORE_PATH", "PREFS_FILE"},
	"store.watch":             {"DASHBOARD_STORE_WATCH"},
	"source.mode":             {"DASHBOARD_SOURCE"},
	"source.remote_url":       {"DASHBOARD_REMOTE_URL", "SUPABASE_FUNCTIONS_URL"},
	"source.finnhub_key":      {"DASHBOARD_FINNHUB_KEY", "FINNHUB_API_KEY"},
	"source.newsapi_key":      {"DASHBOARD_NEWSAPI_KEY", "NEWS_API_KEY"},
	"source.timeout":          {"DASHBOARD_SOURCE_TIMEOUT"},
	"source.rate_limit":       {"DASHBOARD_SOURCE_RATE_LIMIT"},
	"source.attempts":         {"DASHBOARD_SOURCE_ATTEMPTS"},
	"intervals.stocks":        {"DASHBOARD_STOCKS_INTERVAL"},
	"intervals.news":          {"DASHBOARD_NEWS_INTERVAL"},
	"intervals.sports":        {"DASHBOARD_SPORTS_INTERVAL"},
}

// Load reads the config file at filePath if it exists, then applies
// environment overrides. An empty filePath skips the file.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			v.SetConfigFile(filePath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", filePath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalid, c.Server.Port)
	}
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the %s backend", ErrInvalid, c.Store.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: store.backend %q", ErrInvalid, c.Store.Backend)
	}
	switch c.Source.Mode {
	case SourceLive, SourceMock:
	case SourceRemote:
		if c.Source.RemoteURL == "" {
			return fmt.Errorf("%w: source.remote_url is required in remote mode", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: source.mode %q", ErrInvalid, c.Source.Mode)
	}
	for name, d := range map[string]time.Duration{
		"intervals.stocks": c.Intervals.Stocks,
		"intervals.news":   c.Intervals.News,
		"intervals.sports": c.Intervals.Sports,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalid, name)
		}
	}
	return nil
}
