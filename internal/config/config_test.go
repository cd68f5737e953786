package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
auth:
  enabled: true
  api_key: secret
logging:
  development: false
http:
  timeout_seconds: 45
  browser_user_agent: test-browser
feeds:
  timeout_seconds: 5
  refresh_enabled: true
  refresh_cron: "@every 10m"
  sources:
    - name: Grower
      url: https://grower.test/feed
    - name: Garden
      url: https://garden.test/rss
crawler:
  max_pages_default: 25
  min_content_bytes: 200
  page_delay: 250ms
  path_prefix: /studies/
  brand: Example
  workers: 3
  queue_depth: 16
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.Logging.Development {
		t.Fatalf("expected production logging")
	}
	if len(cfg.Feeds.Sources) != 2 || cfg.Feeds.Sources[1].Name != "Garden" || cfg.Feeds.Sources[1].URL != "https://garden.test/rss" {
		t.Fatalf("expected feed sources to be loaded: %+v", cfg.Feeds.Sources)
	}
	if got := cfg.FeedTimeout(); got != 5*time.Second {
		t.Fatalf("expected feed timeout 5s, got %v", got)
	}
	if got := cfg.HTTPTimeout(); got != 45*time.Second {
		t.Fatalf("expected http timeout 45s, got %v", got)
	}

	settings := cfg.CrawlerSettings()
	if settings.MaxPagesDefault != 25 || settings.MinContentBytes != 200 || settings.PageDelay != 250*time.Millisecond {
		t.Fatalf("expected crawler overrides to apply: %+v", settings)
	}
	if settings.PathPrefix != "/studies/" || settings.Brand != "Example" {
		t.Fatalf("expected prefix and brand overrides: %+v", settings)
	}
	if settings.Headers.UserAgent != "test-browser" || settings.Headers.Accept != crawler.DefaultAcceptHTML {
		t.Fatalf("expected browser headers with defaults: %+v", settings.Headers)
	}
	if cfg.Crawler.Workers != 3 || cfg.Crawler.QueueDepth != 16 {
		t.Fatalf("expected worker pool overrides: %+v", cfg.Crawler)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.MaxPagesDefault != crawler.DefaultMaxPages {
		t.Fatalf("expected default max pages, got %d", cfg.Crawler.MaxPagesDefault)
	}
	if cfg.Crawler.PageDelay != time.Second {
		t.Fatalf("expected 1s page delay, got %v", cfg.Crawler.PageDelay)
	}
	feed := cfg.FeedHeaders()
	if feed.UserAgent != crawler.DefaultFeedUserAgent || !strings.Contains(feed.Accept, "application/rss+xml") {
		t.Fatalf("expected identifying feed headers, got %+v", feed)
	}
	if cfg.Feeds.RefreshEnabled {
		t.Fatalf("expected scheduled refresh off by default")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HARVESTER_SERVER_PORT", "7070")
	t.Setenv("HARVESTER_CRAWLER_WORKERS", "9")
	t.Setenv("HARVESTER_FEEDS_USER_AGENT", "env-agent")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.Workers != 9 {
		t.Fatalf("expected env workers 9, got %d", cfg.Crawler.Workers)
	}
	if cfg.FeedHeaders().UserAgent != "env-agent" {
		t.Fatalf("expected env feed user agent, got %q", cfg.FeedHeaders().UserAgent)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:  ServerConfig{Port: 8080},
		HTTP:    HTTPConfig{TimeoutSeconds: 10},
		Feeds:   FeedsConfig{TimeoutSeconds: 10},
		Crawler: CrawlerConfig{MaxPagesDefault: 10, Workers: 1, QueueDepth: 1},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"invalid http timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, "http.timeout_seconds"},
		{"invalid feed timeout", func(c *Config) { c.Feeds.TimeoutSeconds = -1 }, "feeds.timeout_seconds"},
		{"invalid max pages", func(c *Config) { c.Crawler.MaxPagesDefault = 0 }, "crawler.max_pages_default"},
		{"negative min content", func(c *Config) { c.Crawler.MinContentBytes = -1 }, "crawler.min_content_bytes"},
		{"negative delay", func(c *Config) { c.Crawler.PageDelay = -time.Second }, "crawler.page_delay"},
		{"no workers", func(c *Config) { c.Crawler.Workers = 0 }, "crawler.workers"},
		{"no queue", func(c *Config) { c.Crawler.QueueDepth = 0 }, "crawler.queue_depth"},
		{"auth missing api key", func(c *Config) { c.Auth.Enabled = true }, "auth.api_key"},
		{"source without url", func(c *Config) {
			c.Feeds.Sources = []orchestrator.Source{{Name: "A"}}
		}, "feeds.sources[0]"},
		{"bad cron", func(c *Config) {
			c.Feeds.RefreshEnabled = true
			c.Feeds.RefreshCron = "every so often"
		}, "feeds.refresh_cron"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
