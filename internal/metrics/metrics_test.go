package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	require.NotNil(t, feedSourcesTotal)
	require.NotNil(t, crawlPagesTotal)
	require.NotNil(t, httpRequestsTotal)
	require.NotNil(t, httpRequestDurationSeconds)
}

func TestDomainCounters(t *testing.T) {
	Init()

	before := testutil.ToFloat64(crawlPagesTotal.WithLabelValues("listing.test", "thin-content"))
	ObserveCrawlPage("https://Listing.test/studies/", "thin-content")
	require.InDelta(t, before+1, testutil.ToFloat64(crawlPagesTotal.WithLabelValues("listing.test", "thin-content")), 0.001)

	before = testutil.ToFloat64(crawlTerminationsTotal.WithLabelValues("no-new-content"))
	ObserveCrawlTermination("no-new-content")
	require.InDelta(t, before+1, testutil.ToFloat64(crawlTerminationsTotal.WithLabelValues("no-new-content")), 0.001)

	before = testutil.ToFloat64(feedItemsTotal)
	ObserveFeedItems(3)
	ObserveFeedItems(0)
	require.InDelta(t, before+3, testutil.ToFloat64(feedItemsTotal), 0.001)

	before = testutil.ToFloat64(activeWorkers)
	IncActiveWorkers()
	require.InDelta(t, before+1, testutil.ToFloat64(activeWorkers), 0.001)
	DecActiveWorkers()
	require.InDelta(t, before, testutil.ToFloat64(activeWorkers), 0.001)
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
