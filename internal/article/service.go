package article

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/metrics"
	"github.com/JakeFAU/editorial-harvester/internal/publisher"
)

// ErrInvalidURL is reported when an article URL is not absolute http(s).
var ErrInvalidURL = errors.New("article url must be absolute http(s)")

// Result is the outcome of fetching one article. Metadata is nil only when
// the URL itself was unusable.
type Result struct {
	Success  bool      `json:"success"`
	URL      string    `json:"url"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Config tunes a Service.
type Config struct {
	Headers crawler.HeaderProfile
	// Timeout bounds each article fetch. Zero leaves the caller's deadline alone.
	Timeout time.Duration
}

// Service fetches article pages and extracts their metadata.
type Service struct {
	cfg     Config
	fetcher crawler.Fetcher
	logger  *zap.Logger
}

// New builds a Service. Empty headers fall back to the browser profile.
func New(cfg Config, fetcher crawler.Fetcher, logger *zap.Logger) *Service {
	if cfg.Headers.UserAgent == "" {
		cfg.Headers = crawler.BrowserProfile("", cfg.Headers.Accept, cfg.Headers.AcceptLanguage)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, fetcher: fetcher, logger: logger.Named("article")}
}

// Fetch downloads rawURL and extracts its metadata. It never returns an
// error: failures are reported through Result.Success and Result.Error.
func (s *Service) Fetch(ctx context.Context, rawURL string) Result {
	if err := validateURL(rawURL); err != nil {
		metrics.ObserveArticle("error")
		return Result{URL: rawURL, Error: err.Error()}
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.fetcher.Fetch(ctx, crawler.FetchRequest{URL: rawURL, Headers: s.cfg.Headers.Header()})
	if err != nil {
		metrics.ObserveArticle("error")
		s.logger.Warn("Article fetch failed", zap.String("url", rawURL), zap.Error(err))
		return s.failure(rawURL, fmt.Errorf("fetch article: %w", err))
	}
	if !resp.OK() {
		metrics.ObserveArticle("http_error")
		s.logger.Warn("Article returned non-success status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return s.failure(rawURL, fmt.Errorf("fetch article: %w %d", crawler.ErrUnexpectedStatus, resp.StatusCode))
	}

	meta := Extract(string(resp.Body), rawURL)
	metrics.ObserveArticle("ok")
	s.logger.Debug("Article metadata extracted",
		zap.String("url", rawURL),
		zap.Bool("title", meta.Title != nil),
		zap.Bool("publish_date", meta.PublishDate != nil),
	)
	return Result{Success: true, URL: rawURL, Metadata: &meta}
}

// FetchMany fetches each distinct URL once, sequentially, in first-seen
// order. URLs differing only by case or a trailing slash count as one.
func (s *Service) FetchMany(ctx context.Context, urls []string) []Result {
	seen := make(map[string]struct{}, len(urls))
	results := make([]Result, 0, len(urls))
	for _, raw := range urls {
		key := crawler.NormalizeURL(raw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if ctx.Err() != nil {
			results = append(results, s.failure(raw, ctx.Err()))
			continue
		}
		results = append(results, s.Fetch(ctx, raw))
	}
	return results
}

// failure keeps the hostname-derived publisher so callers still get a label.
func (s *Service) failure(rawURL string, err error) Result {
	return Result{
		URL:      rawURL,
		Metadata: &Metadata{Publisher: publisher.DefaultName(rawURL)},
		Error:    err.Error(),
	}
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
