package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultUserAgent mimics a desktop browser so that sites serving different
// markup to bots still return their regular <title>.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Storage backends accepted by storage.backend.
const (
	BackendSQL  = "sql"
	BackendJSON = "json"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML/env keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port            int           `mapstructure:"port"`             // HTTP listen port (default: 5000)
		Debug           bool          `mapstructure:"debug"`            // Verbose gin and GORM logging
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Grace period for in-flight requests
	} `mapstructure:"server"`

	// Database configuration for the relational store
	Database struct {
		URL  string `mapstructure:"url"`  // PostgreSQL connection string, empty means local SQLite
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Storage selects where bookmarks live
	Storage struct {
		Backend  string `mapstructure:"backend"`   // "sql" or "json"
		JSONPath string `mapstructure:"json_path"` // Document used by the json backend and import/export
	} `mapstructure:"storage"`

	// Fetcher configuration for page title retrieval
	Fetcher struct {
		Timeout   time.Duration `mapstructure:"timeout"`
		UserAgent string        `mapstructure:"user_agent"`
	} `mapstructure:"fetcher"`

	// Monitor configuration for retrying failed title fetches
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // 0 disables the monitor
	} `mapstructure:"monitor"`
}

// LoadConfig loads the application configuration using Viper.
// Values come from defaults, an optional ./configs/config.yaml, a .env file
// and the process environment, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	v := viper.New()

	// e.g., "fetcher.timeout" becomes "FETCHER_TIMEOUT"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployment platforms set these unprefixed names.
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.debug", "DEBUG", "FLASK_DEBUG")
	_ = v.BindEnv("database.url", "DATABASE_URL")

	v.AddConfigPath("./configs")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.name", "url_manager.db")
	v.SetDefault("storage.backend", BackendSQL)
	v.SetDefault("storage.json_path", "urls.json")
	v.SetDefault("fetcher.timeout", 5*time.Second)
	v.SetDefault("fetcher.user_agent", DefaultUserAgent)
	v.SetDefault("monitor.interval_minutes", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, customerrors.ErrConfigLoad{Path: v.ConfigFileUsed(), Reason: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Database.URL = NormalizeDatabaseURL(cfg.Database.URL)
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Storage.Backend != BackendSQL && cfg.Storage.Backend != BackendJSON {
		return nil, fmt.Errorf("unknown storage backend %q (want %q or %q)", cfg.Storage.Backend, BackendSQL, BackendJSON)
	}

	log.Printf("Configuration loaded: Port=%d, Debug=%t, Backend=%s, Database=%s",
		cfg.Server.Port, cfg.Server.Debug, cfg.Storage.Backend, cfg.DatabaseTarget())

	return &cfg, nil
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme some hosting
// providers still hand out to the postgresql:// form.
func NormalizeDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(raw, "postgres://")
	}
	return raw
}

// UsesPostgres reports whether a remote PostgreSQL database is configured.
func (c *Config) UsesPostgres() bool {
	return c.Database.URL != ""
}

// DatabaseTarget describes the selected database without leaking credentials.
func (c *Config) DatabaseTarget() string {
	if c.Storage.Backend == BackendJSON {
		return "json:" + c.Storage.JSONPath
	}
	if c.UsesPostgres() {
		return "postgresql"
	}
	return "sqlite:" + c.Database.Name
}

// MonitorInterval returns the title monitor period, zero when disabled.
func (c *Config) MonitorInterval() time.Duration {
	if c.Monitor.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Monitor.IntervalMinutes) * time.Minute
}
