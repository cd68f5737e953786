package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/metrics"
	"github.com/JakeFAU/editorial-harvester/internal/publisher"
)

// DefaultMaxPages bounds a crawl when neither the request nor the config
// sets a page cap.
const DefaultMaxPages = 10

var (
	// ErrUnexpectedStatus marks a listing page answered with a non-2xx status
	// other than 404.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrInvalidBaseURL marks a ListingRequest whose base URL is not an
	// absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base url")
)

// Config tunes the paginated crawler.
type Config struct {
	MaxPagesDefault int
	MinContentBytes int
	PageDelay       time.Duration
	PathPrefix      string
	Brand           string
	Headers         HeaderProfile
}

// Paginated walks listing pages one at a time. It is safe for concurrent
// use; every Crawl call owns its own Session.
type Paginated struct {
	cfg     Config
	fetcher Fetcher
	pauser  Pauser
	ids     IDGenerator
	logger  *zap.Logger
}

// NewPaginated wires a Paginated crawler. A nil pauser means TimerPauser and
// a nil logger means zap.NewNop().
func NewPaginated(cfg Config, fetcher Fetcher, pauser Pauser, ids IDGenerator, logger *zap.Logger) *Paginated {
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginated{
		cfg:     cfg,
		fetcher: fetcher,
		pauser:  pauser,
		ids:     ids,
		logger:  logger.Named("crawler"),
	}
}

// Crawl walks request.BaseURL page by page until a termination policy fires.
// A fatal page still returns every record accumulated before it.
func (p *Paginated) Crawl(ctx context.Context, request ListingRequest) CrawlResult {
	session := newSession()
	base, err := parseBase(request.BaseURL)
	if err != nil {
		session.Reason = ReasonError
		return p.finish(request, session, err)
	}

	maxPages := p.maxPages(request)
	prefix := p.pathPrefix(request, base)
	brand := firstNonEmpty(request.Brand, p.cfg.Brand, publisher.DefaultName(request.BaseURL))
	headers := p.cfg.Headers.Header()

	for n := 1; ; n++ {
		session.Page = n
		pageURL := PageURL(request.BaseURL, n)
		logger := p.logger.With(zap.String("url", pageURL), zap.Int("page", n))

		resp, err := p.fetcher.Fetch(ctx, FetchRequest{URL: pageURL, Headers: headers})
		if err != nil {
			metrics.ObserveCrawlPage(pageURL, "error")
			session.Reason = ReasonError
			return p.finish(request, session, fmt.Errorf("fetch page %d: %w", n, err))
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			metrics.ObserveCrawlPage(pageURL, string(ReasonNotFound))
			session.Reason = ReasonNotFound
			return p.finish(request, session, nil)
		case !resp.OK():
			metrics.ObserveCrawlPage(pageURL, "error")
			session.Reason = ReasonError
			return p.finish(request, session, fmt.Errorf("page %d: %w %d", n, ErrUnexpectedStatus, resp.StatusCode))
		case p.thin(resp.Body):
			metrics.ObserveCrawlPage(pageURL, string(ReasonThinContent))
			session.Reason = ReasonThinContent
			return p.finish(request, session, nil)
		}

		page := listingPage{
			url:    base,
			self:   []string{pageURL},
			prefix: prefix,
			brand:  brand,
			body:   string(resp.Body),
		}
		if final, err := url.Parse(resp.URL); err == nil && final.IsAbs() {
			page.url = final
			page.self = append(page.self, resp.URL)
		}
		records := page.records()
		p.assignIDs(session, records)
		added := session.Append(records)
		metrics.ObserveCrawlPage(pageURL, "ok")
		logger.Debug("Listing page extracted", zap.Int("found", len(records)), zap.Int("new", added))

		if added == 0 {
			session.Reason = ReasonNoNewContent
			return p.finish(request, session, nil)
		}
		if n >= maxPages {
			session.Reason = ReasonMaxPages
			return p.finish(request, session, nil)
		}
		p.pauser.Pause(ctx, p.cfg.PageDelay)
		if err := ctx.Err(); err != nil {
			session.Reason = ReasonError
			return p.finish(request, session, fmt.Errorf("crawl canceled: %w", err))
		}
	}
}

func (p *Paginated) finish(request ListingRequest, session *Session, err error) CrawlResult {
	metrics.ObserveCrawlTermination(string(session.Reason))
	fields := []zap.Field{
		zap.String("base_url", request.BaseURL),
		zap.String("reason", string(session.Reason)),
		zap.Int("pages", session.Page),
		zap.Int("records", len(session.records)),
	}
	if err != nil {
		p.logger.Warn("Crawl failed", append(fields, zap.Error(err))...)
	} else {
		p.logger.Info("Crawl finished", fields...)
	}
	return session.result(err)
}

func (p *Paginated) thin(body []byte) bool {
	return p.cfg.MinContentBytes > 0 && len(body) < p.cfg.MinContentBytes
}

func (p *Paginated) maxPages(request ListingRequest) int {
	switch {
	case request.MaxPages > 0:
		return request.MaxPages
	case p.cfg.MaxPagesDefault > 0:
		return p.cfg.MaxPagesDefault
	default:
		return DefaultMaxPages
	}
}

// pathPrefix picks the request prefix, then the configured one, then the
// base URL's own path.
func (p *Paginated) pathPrefix(request ListingRequest, base *url.URL) string {
	prefix := firstNonEmpty(request.PathPrefix, p.cfg.PathPrefix, base.Path, "/")
	if prefix[0] != '/' {
		prefix = "/" + prefix
	}
	return prefix
}

// assignIDs gives records without a usable path segment a generated ID. The
// record-N fallback numbers across the whole session.
func (p *Paginated) assignIDs(session *Session, records []StudyRecord) {
	for i := range records {
		if records[i].ID != "" {
			continue
		}
		if p.ids != nil {
			if id, err := p.ids.NewID(); err == nil {
				records[i].ID = id
				continue
			}
		}
		session.fallbackIDs++
		records[i].ID = fmt.Sprintf("record-%d", session.fallbackIDs)
	}
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return u, nil
}
