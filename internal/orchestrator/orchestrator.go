// Package orchestrator fetches many syndication feeds concurrently and merges
// them into one date-ordered, deduplicated batch.
package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/dates"
	"github.com/JakeFAU/editorial-harvester/internal/feed"
	"github.com/JakeFAU/editorial-harvester/internal/metrics"
)

// DefaultTimeout bounds each source fetch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Source is a named feed location.
type Source struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// Batch is the merged result of one Run.
type Batch struct {
	Success       bool        `json:"success"`
	Items         []feed.Item `json:"items"`
	FetchedAt     time.Time   `json:"fetchedAt"`
	SourceCount   int         `json:"sourceCount"`
	FailedSources []string    `json:"failedSources"`
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Config tunes an Orchestrator.
type Config struct {
	// Timeout applies to each source independently.
	Timeout time.Duration
	Headers crawler.HeaderProfile
}

// Orchestrator runs one concurrent fetch per source.
type Orchestrator struct {
	cfg     Config
	fetcher crawler.Fetcher
	clock   Clock
	logger  *zap.Logger
}

// New builds an Orchestrator. A nil logger means zap.NewNop().
func New(cfg Config, fetcher crawler.Fetcher, clock Clock, logger *zap.Logger) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:     cfg,
		fetcher: fetcher,
		clock:   clock,
		logger:  logger.Named("orchestrator"),
	}
}

// WithTimeout returns a copy of o using timeout per source. Non-positive
// values keep the current timeout.
func (o *Orchestrator) WithTimeout(timeout time.Duration) *Orchestrator {
	c := *o
	if timeout > 0 {
		c.cfg.Timeout = timeout
	}
	return &c
}

type sourceResult struct {
	items []feed.Item
	err   error
}

// Run fetches every source concurrently and waits for all of them. A failing
// source contributes no items and never fails the batch. Items are merged in
// source order, stable-sorted by publish date descending with undated items
// last, then deduplicated by exact link, keeping the first occurrence.
func (o *Orchestrator) Run(ctx context.Context, sources []Source) Batch {
	results := make([]sourceResult, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			items, err := o.fetchSource(ctx, src)
			results[i] = sourceResult{items: items, err: err}
		}(i, src)
	}
	wg.Wait()

	merged := make([]feed.Item, 0)
	failed := make([]string, 0)
	for i, res := range results {
		if res.err != nil {
			metrics.ObserveFeedSource("failed")
			o.logger.Warn("Feed source failed",
				zap.String("source", sources[i].Name),
				zap.String("url", sources[i].URL),
				zap.Error(res.err),
			)
			failed = append(failed, sources[i].Name)
			continue
		}
		metrics.ObserveFeedSource("ok")
		merged = append(merged, res.items...)
	}

	items := DedupeByLink(SortByDate(merged))
	metrics.ObserveFeedItems(len(items))
	o.logger.Info("Feed batch merged",
		zap.Int("sources", len(sources)),
		zap.Int("failed", len(failed)),
		zap.Int("items", len(items)),
	)
	return Batch{
		Success:       true,
		Items:         items,
		FetchedAt:     o.now(),
		SourceCount:   len(sources),
		FailedSources: failed,
	}
}

func (o *Orchestrator) fetchSource(ctx context.Context, src Source) ([]feed.Item, error) {
	if src.URL == "" {
		return nil, fmt.Errorf("source %q has no url", src.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := o.fetcher.Fetch(ctx, crawler.FetchRequest{URL: src.URL, Headers: o.cfg.Headers.Header()})
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch feed: %w %d", crawler.ErrUnexpectedStatus, resp.StatusCode)
	}
	items := feed.Parse(string(resp.Body), src.Name)
	o.logger.Debug("Feed source parsed", zap.String("source", src.Name), zap.Int("items", len(items)))
	return items, nil
}

func (o *Orchestrator) now() time.Time {
	if o.clock == nil {
		return time.Now().UTC()
	}
	return o.clock.Now()
}

type datedItem struct {
	item  feed.Item
	at    time.Time
	dated bool
}

// SortByDate returns items stable-sorted by publish date, newest first.
// Items without a parseable date sort after every dated item and keep their
// relative order.
func SortByDate(items []feed.Item) []feed.Item {
	keyed := make([]datedItem, len(items))
	for i, it := range items {
		keyed[i] = datedItem{item: it}
		if it.PublishDate != nil {
			keyed[i].at, keyed[i].dated = dates.Parse(*it.PublishDate)
		}
	}
	slices.SortStableFunc(keyed, func(a, b datedItem) int {
		switch {
		case a.dated && b.dated:
			return b.at.Compare(a.at)
		case a.dated:
			return -1
		case b.dated:
			return 1
		default:
			return 0
		}
	})
	out := make([]feed.Item, len(keyed))
	for i, k := range keyed {
		out[i] = k.item
	}
	return out
}

// DedupeByLink drops items whose link string exactly matches an earlier
// item. No URL normalization is applied.
func DedupeByLink(items []feed.Item) []feed.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Link]; ok {
			continue
		}
		seen[it.Link] = struct{}{}
		out = append(out, it)
	}
	return out
}
