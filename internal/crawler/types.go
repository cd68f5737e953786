// Package crawler walks paginated listing pages and turns them into
// StudyRecords. It also defines the transport and job contracts shared with
// the article, orchestrator and service packages.
package crawler

import (
	"net/http"
	"time"
)

// JobStatus represents the lifecycle state of a crawl job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Reason explains why a crawl stopped.
type Reason string

// Termination reasons reported in CrawlResult.
const (
	ReasonNotFound     Reason = "404"
	ReasonThinContent  Reason = "thin-content"
	ReasonNoNewContent Reason = "no-new-content"
	ReasonMaxPages     Reason = "max-pages"
	ReasonError        Reason = "error"
)

// ListingRequest describes one paginated crawl.
type ListingRequest struct {
	BaseURL    string `json:"baseUrl"`
	MaxPages   int    `json:"maxPages,omitempty"`
	PathPrefix string `json:"pathPrefix,omitempty"`
	Brand      string `json:"brand,omitempty"`
}

// StudyRecord is one item discovered on a listing page.
type StudyRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Brand       string  `json:"brand"`
	PublishDate *string `json:"publishDate"`
	Excerpt     *string `json:"excerpt"`
	Image       *string `json:"image"`
}

// CrawlResult is the outcome of a crawl. Records extracted before a fatal
// page are always kept.
type CrawlResult struct {
	Success     bool          `json:"success"`
	Records     []StudyRecord `json:"records"`
	PagesWalked int           `json:"pagesWalked"`
	Reason      Reason        `json:"reason"`
	Error       string        `json:"error,omitempty"`
}

// Job represents the metadata kept for each submitted crawl request.
type Job struct {
	ID        string         `json:"id"`
	Status    JobStatus      `json:"status"`
	Submitted time.Time      `json:"submittedAt"`
	Started   *time.Time     `json:"startedAt,omitempty"`
	Finished  *time.Time     `json:"finishedAt,omitempty"`
	ErrorText string         `json:"error,omitempty"`
	Request   ListingRequest `json:"request"`
	Result    *CrawlResult   `json:"result,omitempty"`
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the response carried a 2xx status.
func (r FetchResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
