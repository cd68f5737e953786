// Package metrics exposes Prometheus collectors for the harvester service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	feedSourcesTotal           *prometheus.CounterVec
	feedItemsTotal             prometheus.Counter
	crawlPagesTotal            *prometheus.CounterVec
	crawlTerminationsTotal     *prometheus.CounterVec
	articleExtractionsTotal    *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	jobsTotal                  *prometheus.CounterVec
	activeWorkers              prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		feedSourcesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_feed_sources_total",
				Help: "Total number of feed source fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		feedItemsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_feed_items_total",
				Help: "Total number of feed items returned after merge and dedup.",
			},
		)

		crawlPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_crawl_pages_total",
				Help: "Total number of listing pages fetched, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		crawlTerminationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_crawl_terminations_total",
				Help: "Total number of finished crawls, labeled by terminal reason.",
			},
			[]string{"reason"},
		)

		articleExtractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_article_extractions_total",
				Help: "Total number of article metadata fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_crawl_jobs_total",
				Help: "Total number of async crawl jobs processed, labeled by status.",
			},
			[]string{"status"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "harvester_active_workers",
				Help: "Number of workers currently processing a crawl job.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveFeedSource counts one source fetch with outcome "ok" or "failed".
func ObserveFeedSource(outcome string) {
	Init()
	feedSourcesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFeedItems adds n merged feed items.
func ObserveFeedItems(n int) {
	Init()
	if n > 0 {
		feedItemsTotal.Add(float64(n))
	}
}

// ObserveCrawlPage counts one listing page fetch.
func ObserveCrawlPage(site, outcome string) {
	Init()
	crawlPagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveCrawlTermination counts a finished crawl by reason.
func ObserveCrawlTermination(reason string) {
	Init()
	crawlTerminationsTotal.WithLabelValues(reason).Inc()
}

// ObserveArticle counts one article metadata fetch.
func ObserveArticle(outcome string) {
	Init()
	articleExtractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveJob increments the job counter for the given status.
func ObserveJob(status string) {
	Init()
	jobsTotal.WithLabelValues(status).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	activeWorkers.Dec()
}
