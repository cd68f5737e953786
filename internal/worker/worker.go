// Package worker runs queued crawl jobs.
package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/metrics"
)

// Worker consumes queue items and runs the listing crawler for each.
type Worker struct {
	queue    crawler.Queue
	jobStore crawler.JobStore
	listing  crawler.ListingCrawler
	logger   *zap.Logger
}

// New constructs a Worker.
func New(
	queue crawler.Queue,
	jobStore crawler.JobStore,
	listing crawler.ListingCrawler,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:    queue,
		jobStore: jobStore,
		listing:  listing,
		logger:   logger.Named("worker"),
	}
}

// Run blocks, consuming queue items until the context finishes or the queue
// is closed.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, crawler.ErrQueueClosed) {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID))
		w.processJob(ctx, item)
	}
}

func (w *Worker) processJob(ctx context.Context, item crawler.QueueItem) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	if w.listing == nil {
		w.logger.Error("no listing crawler configured", zap.String("job_id", item.JobID))
		w.finish(ctx, item.JobID, crawler.JobStatusFailed, "no listing crawler configured")
		return
	}
	if err := w.jobStore.UpdateJobStatus(ctx, item.JobID, crawler.JobStatusRunning, ""); err != nil {
		w.logger.Error("update job status failed", zap.String("job_id", item.JobID), zap.Error(err))
		return
	}

	result := w.listing.Crawl(ctx, item.Request)
	if err := w.jobStore.SaveResult(ctx, item.JobID, result); err != nil {
		w.logger.Error("save crawl result failed", zap.String("job_id", item.JobID), zap.Error(err))
	}

	status := crawler.JobStatusSucceeded
	if !result.Success {
		status = crawler.JobStatusFailed
	}
	w.logger.Info("crawl job finished",
		zap.String("job_id", item.JobID),
		zap.String("status", string(status)),
		zap.String("reason", string(result.Reason)),
		zap.Int("records", len(result.Records)),
	)
	w.finish(ctx, item.JobID, status, result.Error)
}

func (w *Worker) finish(ctx context.Context, jobID string, status crawler.JobStatus, errText string) {
	metrics.ObserveJob(string(status))
	// The job context may already be canceled; the final status still lands.
	if err := w.jobStore.UpdateJobStatus(context.WithoutCancel(ctx), jobID, status, errText); err != nil {
		w.logger.Error("final job status update failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
