// Package memory keeps crawl jobs and scheduled feed batches for the lifetime
// of the process.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
)

var (
	// ErrJobExists is returned when a job ID is reused.
	ErrJobExists = errors.New("job already exists")
	// ErrJobNotFound is returned for unknown job IDs.
	ErrJobNotFound = errors.New("job not found")
)

// JobStore is an in-memory crawler.JobStore.
type JobStore struct {
	mu    sync.RWMutex
	clock crawler.Clock
	jobs  map[string]crawler.Job
}

// NewJobStore constructs a JobStore. A nil clock uses time.Now in UTC.
func NewJobStore(clock crawler.Clock) *JobStore {
	return &JobStore{
		clock: clock,
		jobs:  make(map[string]crawler.Job),
	}
}

// CreateJob stores a new job.
func (s *JobStore) CreateJob(_ context.Context, job crawler.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return ErrJobExists
	}
	if job.Status == "" {
		job.Status = crawler.JobStatusQueued
	}
	if job.Submitted.IsZero() {
		job.Submitted = s.now()
	}
	s.jobs[job.ID] = job
	return nil
}

// UpdateJobStatus moves a job to status, stamping start and finish times.
func (s *JobStore) UpdateJobStatus(_ context.Context, jobID string, status crawler.JobStatus, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	job.ErrorText = errText
	now := s.now()
	if status == crawler.JobStatusRunning && job.Started == nil {
		job.Started = pointerTime(now)
	}
	if isTerminal(status) {
		job.Finished = pointerTime(now)
	}
	s.jobs[jobID] = job
	return nil
}

// SaveResult attaches the crawl outcome to a job.
func (s *JobStore) SaveResult(_ context.Context, jobID string, result crawler.CrawlResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	res := result
	res.Records = append([]crawler.StudyRecord(nil), result.Records...)
	job.Result = &res
	s.jobs[jobID] = job
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (crawler.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return crawler.Job{}, ErrJobNotFound
	}
	return job, nil
}

func (s *JobStore) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now()
}

func pointerTime(t time.Time) *time.Time {
	ts := t
	return &ts
}

func isTerminal(status crawler.JobStatus) bool {
	switch status {
	case crawler.JobStatusSucceeded, crawler.JobStatusFailed:
		return true
	default:
		return false
	}
}
