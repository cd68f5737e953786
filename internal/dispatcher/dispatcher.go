// Package dispatcher manages worker fan-out over the crawl job queue.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/worker"
)

// ErrMissingBaseURL rejects a submission without a listing URL.
var ErrMissingBaseURL = errors.New("baseUrl is required")

// Dispatcher fans out queue work to a pool of workers and accepts new jobs.
type Dispatcher struct {
	queue    crawler.Queue
	jobStore crawler.JobStore
	ids      crawler.IDGenerator
	clock    crawler.Clock
	workers  []*worker.Worker
}

// New creates a Dispatcher.
func New(
	queue crawler.Queue,
	jobStore crawler.JobStore,
	ids crawler.IDGenerator,
	clock crawler.Clock,
	workers []*worker.Worker,
) *Dispatcher {
	return &Dispatcher{
		queue:    queue,
		jobStore: jobStore,
		ids:      ids,
		clock:    clock,
		workers:  workers,
	}
}

// Run starts all workers and blocks until the context finishes.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range d.workers {
		wg.Add(1)
		go func(wk *worker.Worker) {
			defer wg.Done()
			wk.Run(ctx)
		}(w)
	}
	<-ctx.Done()
	wg.Wait()
}

// Submit records a queued job for request and enqueues it, returning the
// job ID. A job whose enqueue fails is marked failed.
func (d *Dispatcher) Submit(ctx context.Context, request crawler.ListingRequest) (string, error) {
	if request.BaseURL == "" {
		return "", ErrMissingBaseURL
	}
	jobID, err := d.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("new job id: %w", err)
	}
	now := d.clock.Now()
	job := crawler.Job{
		ID:        jobID,
		Status:    crawler.JobStatusQueued,
		Submitted: now,
		Request:   request,
	}
	if err := d.jobStore.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	item := crawler.QueueItem{JobID: jobID, Request: request, Submitted: now.Unix()}
	if err := d.Enqueue(ctx, item); err != nil {
		if updateErr := d.jobStore.UpdateJobStatus(ctx, jobID, crawler.JobStatusFailed, err.Error()); updateErr != nil {
			err = errors.Join(err, updateErr)
		}
		return "", err
	}
	return jobID, nil
}

// Enqueue proxies to the underlying queue.
func (d *Dispatcher) Enqueue(ctx context.Context, item crawler.QueueItem) error {
	if err := d.queue.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}
	return nil
}
