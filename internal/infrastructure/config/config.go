package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	App          AppConfig
	API          APIConfig
	Store        StoreConfig
	Log          LogConfig
	Notification NotificationConfig
	OAuth        OAuthConfig
	Metrics      MetricsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	DemoMode bool // fall back to the canned dataset when the backend is unreachable
	RadiusKm int  // default radius for regional feed and suggestions
}

// APIConfig holds settings for the remote REST backend
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig holds settings for the durable local store
type StoreConfig struct {
	Path string // sqlite file; ":memory:" keeps the session for one run only
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// NotificationConfig holds the unread-count poller settings
type NotificationConfig struct {
	PollInterval time.Duration
}

// OAuthConfig holds the loopback callback listener settings
type OAuthConfig struct {
	ListenAddr string
}

// MetricsConfig holds client-side metrics settings
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with IFC_ prefix (e.g. IFC_API_BASE_URL)
// 2. config.toml next to the binary or in the user config dir
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "ifconnect"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars cover everything
	}

	v.SetEnvPrefix("IFC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			DemoMode: v.GetBool("app.demo_mode"),
			RadiusKm: v.GetInt("app.radius_km"),
		},
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Store: StoreConfig{
			Path: v.GetString("store.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Notification: NotificationConfig{
			PollInterval: v.GetDuration("notification.poll_interval"),
		},
		OAuth: OAuthConfig{
			ListenAddr: v.GetString("oauth.listen_addr"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ifconnect"
	}
	if cfg.App.RadiusKm == 0 {
		cfg.App.RadiusKm = 50
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Notification.PollInterval == 0 {
		cfg.Notification.PollInterval = time.Minute
	}
	if cfg.OAuth.ListenAddr == "" {
		cfg.OAuth.ListenAddr = "127.0.0.1:9876"
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ifconnect.db"
	}
	return filepath.Join(dir, "ifconnect", "ifconnect.db")
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Notification.PollInterval < time.Second {
		return fmt.Errorf("notification.poll_interval must be at least 1s")
	}
	return nil
}
