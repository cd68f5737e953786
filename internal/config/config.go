// Package config loads and validates harvester configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

// EnvPrefix namespaces every environment override (HARVESTER_SERVER_PORT).
const EnvPrefix = "HARVESTER"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Feeds   FeedsConfig   `mapstructure:"feeds"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// HTTPConfig holds the browser profile used for article and listing pages.
type HTTPConfig struct {
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	BrowserUserAgent string `mapstructure:"browser_user_agent"`
	AcceptHTML       string `mapstructure:"accept_html"`
	AcceptLanguage   string `mapstructure:"accept_language"`
}

// FeedsConfig lists syndication sources and how they are fetched.
type FeedsConfig struct {
	UserAgent      string                `mapstructure:"user_agent"`
	Accept         string                `mapstructure:"accept"`
	TimeoutSeconds int                   `mapstructure:"timeout_seconds"`
	Sources        []orchestrator.Source `mapstructure:"sources"`
	RefreshEnabled bool                  `mapstructure:"refresh_enabled"`
	RefreshCron    string                `mapstructure:"refresh_cron"`
}

// CrawlerConfig governs listing crawls and the async job pipeline.
type CrawlerConfig struct {
	MaxPagesDefault int           `mapstructure:"max_pages_default"`
	MinContentBytes int           `mapstructure:"min_content_bytes"`
	PageDelay       time.Duration `mapstructure:"page_delay"`
	PathPrefix      string        `mapstructure:"path_prefix"`
	Brand           string        `mapstructure:"brand"`
	Workers         int           `mapstructure:"workers"`
	QueueDepth      int           `mapstructure:"queue_depth"`
}

// Load builds a Config from an optional .env file, an optional config file
// and the environment, in increasing priority.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("logging.development", true)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.browser_user_agent", crawler.DefaultBrowserUserAgent)
	v.SetDefault("http.accept_html", crawler.DefaultAcceptHTML)
	v.SetDefault("http.accept_language", crawler.DefaultAcceptLanguage)
	v.SetDefault("feeds.user_agent", crawler.DefaultFeedUserAgent)
	v.SetDefault("feeds.accept", crawler.DefaultAcceptFeed)
	v.SetDefault("feeds.timeout_seconds", int(orchestrator.DefaultTimeout/time.Second))
	v.SetDefault("feeds.refresh_enabled", false)
	v.SetDefault("feeds.refresh_cron", "*/30 * * * *")
	v.SetDefault("crawler.max_pages_default", crawler.DefaultMaxPages)
	v.SetDefault("crawler.min_content_bytes", 1000)
	v.SetDefault("crawler.page_delay", "1s")
	v.SetDefault("crawler.path_prefix", "")
	v.SetDefault("crawler.brand", "")
	v.SetDefault("crawler.workers", 2)
	v.SetDefault("crawler.queue_depth", 64)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Feeds.TimeoutSeconds <= 0 {
		return fmt.Errorf("feeds.timeout_seconds must be > 0")
	}
	if c.Crawler.MaxPagesDefault <= 0 {
		return fmt.Errorf("crawler.max_pages_default must be > 0")
	}
	if c.Crawler.MinContentBytes < 0 {
		return fmt.Errorf("crawler.min_content_bytes must be >= 0")
	}
	if c.Crawler.PageDelay < 0 {
		return fmt.Errorf("crawler.page_delay must be >= 0")
	}
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be > 0")
	}
	if c.Crawler.QueueDepth <= 0 {
		return fmt.Errorf("crawler.queue_depth must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	for i, src := range c.Feeds.Sources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("feeds.sources[%d] needs both name and url", i)
		}
	}
	if c.Feeds.RefreshEnabled {
		if _, err := cron.ParseStandard(c.Feeds.RefreshCron); err != nil {
			return fmt.Errorf("feeds.refresh_cron: %w", err)
		}
	}
	return nil
}

// BrowserHeaders is the header profile for article and listing pages.
func (c Config) BrowserHeaders() crawler.HeaderProfile {
	return crawler.BrowserProfile(c.HTTP.BrowserUserAgent, c.HTTP.AcceptHTML, c.HTTP.AcceptLanguage)
}

// FeedHeaders is the header profile for syndication feeds.
func (c Config) FeedHeaders() crawler.HeaderProfile {
	return crawler.FeedProfile(c.Feeds.UserAgent, c.Feeds.Accept)
}

// HTTPTimeout converts http.timeout_seconds into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// FeedTimeout converts feeds.timeout_seconds into a duration.
func (c Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feeds.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds each API request.
func (c Config) RequestTimeout() time.Duration {
	if c.Server.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// CrawlerSettings maps the crawler section onto the paginated crawler config.
func (c Config) CrawlerSettings() crawler.Config {
	return crawler.Config{
		MaxPagesDefault: c.Crawler.MaxPagesDefault,
		MinContentBytes: c.Crawler.MinContentBytes,
		PageDelay:       c.Crawler.PageDelay,
		PathPrefix:      c.Crawler.PathPrefix,
		Brand:           c.Crawler.Brand,
		Headers:         c.BrowserHeaders(),
	}
}
