package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/feed"
)

const threeItemFeed = `<rss><channel>
<item><title>Middle</title><link>https://a.test/middle</link><pubDate>Mon, 04 Mar 2024 09:00:00 GMT</pubDate></item>
<item><title>Undated</title><link>https://a.test/undated</link></item>
<item><title>Newest</title><link>https://a.test/newest</link><pubDate>2024-03-06T12:00:00Z</pubDate></item>
</channel></rss>`

type stubResponse struct {
	status int
	body   string
	err    error
	block  bool
}

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	headers   []http.Header
}

func (f *fakeFetcher) Fetch(ctx context.Context, req crawler.FetchRequest) (crawler.FetchResponse, error) {
	f.mu.Lock()
	resp := f.responses[req.URL]
	f.headers = append(f.headers, req.Headers)
	f.mu.Unlock()

	if resp.block {
		<-ctx.Done()
		return crawler.FetchResponse{}, ctx.Err()
	}
	if resp.err != nil {
		return crawler.FetchResponse{}, resp.err
	}
	status := resp.status
	if status == 0 {
		status = http.StatusOK
	}
	return crawler.FetchResponse{URL: req.URL, StatusCode: status, Body: []byte(resp.body)}, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func links(items []feed.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Link)
	}
	return out
}

func TestRunTimeoutSourceContributesNothing(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]stubResponse{
		"https://slow.test/feed": {block: true},
		"https://a.test/feed":    {body: threeItemFeed},
	}}
	now := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	o := New(Config{Timeout: 50 * time.Millisecond}, fetcher, fixedClock{now: now}, zap.NewNop())

	start := time.Now()
	batch := o.Run(context.Background(), []Source{
		{Name: "Slow", URL: "https://slow.test/feed"},
		{Name: "A", URL: "https://a.test/feed"},
	})
	require.Less(t, time.Since(start), time.Second)

	require.True(t, batch.Success)
	require.Equal(t, 2, batch.SourceCount)
	require.Equal(t, now, batch.FetchedAt)
	require.Equal(t, []string{"Slow"}, batch.FailedSources)
	require.Equal(t, []string{
		"https://a.test/newest",
		"https://a.test/middle",
		"https://a.test/undated",
	}, links(batch.Items))
	require.Nil(t, batch.Items[2].PublishDate)
	require.Equal(t, "A", batch.Items[0].SourceName)
}

func TestRunDedupesExactLinksAcrossSources(t *testing.T) {
	t.Parallel()

	second := `<rss><channel>
<item><title>Newest again</title><link>https://a.test/newest</link><pubDate>2024-03-06T12:00:00Z</pubDate></item>
<item><title>Slash variant</title><link>https://a.test/newest/</link></item>
</channel></rss>`
	fetcher := &fakeFetcher{responses: map[string]stubResponse{
		"https://a.test/feed": {body: threeItemFeed},
		"https://b.test/feed": {body: second},
	}}
	o := New(Config{}, fetcher, nil, nil)
	batch := o.Run(context.Background(), []Source{
		{Name: "A", URL: "https://a.test/feed"},
		{Name: "B", URL: "https://b.test/feed"},
	})

	require.Empty(t, batch.FailedSources)
	require.Equal(t, []string{
		"https://a.test/newest",
		"https://a.test/middle",
		"https://a.test/undated",
		"https://a.test/newest/",
	}, links(batch.Items))
	require.Equal(t, "Newest", batch.Items[0].Title, "first occurrence in merge order wins")
}

func TestRunFailedSources(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]stubResponse{
		"https://down.test/feed":  {status: http.StatusServiceUnavailable},
		"https://error.test/feed": {err: errors.New("dial tcp: refused")},
		"https://junk.test/feed":  {body: "<html>not a feed</html>"},
	}}
	o := New(Config{}, fetcher, nil, zap.NewNop())
	batch := o.Run(context.Background(), []Source{
		{Name: "Down", URL: "https://down.test/feed"},
		{Name: "Error", URL: "https://error.test/feed"},
		{Name: "Junk", URL: "https://junk.test/feed"},
		{Name: "Empty"},
	})

	require.True(t, batch.Success)
	require.Equal(t, 4, batch.SourceCount)
	require.Equal(t, []string{"Down", "Error", "Empty"}, batch.FailedSources)
	require.NotNil(t, batch.Items)
	require.Empty(t, batch.Items)
}

func TestRunNoSources(t *testing.T) {
	t.Parallel()

	batch := New(Config{}, &fakeFetcher{}, nil, nil).Run(context.Background(), nil)
	require.True(t, batch.Success)
	require.Zero(t, batch.SourceCount)
	require.NotNil(t, batch.Items)
	require.NotNil(t, batch.FailedSources)
}

func TestRunSendsFeedHeaders(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]stubResponse{"https://a.test/feed": {body: threeItemFeed}}}
	o := New(Config{Headers: crawler.FeedProfile("", "")}, fetcher, nil, nil)
	o.Run(context.Background(), []Source{{Name: "A", URL: "https://a.test/feed"}})

	require.Len(t, fetcher.headers, 1)
	require.Equal(t, crawler.DefaultFeedUserAgent, fetcher.headers[0].Get("User-Agent"))
	require.Contains(t, fetcher.headers[0].Get("Accept"), "application/rss+xml")
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	o := New(Config{Timeout: time.Second}, nil, nil, nil)
	require.Equal(t, 2*time.Second, o.WithTimeout(2*time.Second).cfg.Timeout)
	require.Equal(t, time.Second, o.WithTimeout(0).cfg.Timeout)
	require.Equal(t, time.Second, o.cfg.Timeout)
	require.Equal(t, DefaultTimeout, New(Config{}, nil, nil, nil).cfg.Timeout)
}

func strPtr(s string) *string { return &s }

func TestSortByDate(t *testing.T) {
	t.Parallel()

	items := []feed.Item{
		{Link: "null-1"},
		{Link: "old", PublishDate: strPtr("2023-01-01T00:00:00.000Z")},
		{Link: "bad", PublishDate: strPtr("garbage")},
		{Link: "new", PublishDate: strPtr("2024-01-01T00:00:00.000Z")},
		{Link: "null-2"},
		{Link: "tie-a", PublishDate: strPtr("2023-06-01T00:00:00.000Z")},
		{Link: "tie-b", PublishDate: strPtr("2023-06-01T00:00:00.000Z")},
	}
	sorted := SortByDate(items)
	require.Equal(t, []string{"new", "tie-a", "tie-b", "old", "null-1", "bad", "null-2"}, links(sorted))
	require.Equal(t, "null-1", items[0].Link, "input is not modified")
}

func TestDedupeByLinkIsExact(t *testing.T) {
	t.Parallel()

	items := []feed.Item{
		{Title: "first", Link: "https://x.test/a"},
		{Title: "second", Link: "https://x.test/a"},
		{Title: "case", Link: "https://X.test/a"},
		{Title: "slash", Link: "https://x.test/a/"},
	}
	out := DedupeByLink(items)
	require.Len(t, out, 3)
	require.Equal(t, "first", out[0].Title)
}
