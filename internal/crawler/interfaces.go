package crawler

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Queue implementations after shutdown.
var ErrQueueClosed = errors.New("queue closed")

// Fetcher fetches a URL and returns the body plus metadata. A non-2xx status
// is not an error; only transport failures are.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// ListingCrawler walks a paginated listing.
type ListingCrawler interface {
	Crawl(ctx context.Context, request ListingRequest) CrawlResult
}

// JobStore persists asynchronous crawl jobs and their results.
type JobStore interface {
	CreateJob(ctx context.Context, job Job) error
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errText string) error
	SaveResult(ctx context.Context, jobID string, result CrawlResult) error
	GetJob(ctx context.Context, jobID string) (Job, error)
}

// Queue provides enqueue/dequeue semantics for crawl jobs.
type Queue interface {
	Enqueue(ctx context.Context, job QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Pauser inserts the politeness delay between listing pages.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job and record IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string
	Request   ListingRequest
	Attempt   int
	Submitted int64
}
