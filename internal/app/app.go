// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/api"
	"github.com/JakeFAU/editorial-harvester/internal/article"
	"github.com/JakeFAU/editorial-harvester/internal/clock/system"
	"github.com/JakeFAU/editorial-harvester/internal/config"
	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/editorial-harvester/internal/fetcher/colly"
	"github.com/JakeFAU/editorial-harvester/internal/id/uuid"
	"github.com/JakeFAU/editorial-harvester/internal/metrics"
	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
	queueMemory "github.com/JakeFAU/editorial-harvester/internal/queue/memory"
	"github.com/JakeFAU/editorial-harvester/internal/scheduler"
	storage "github.com/JakeFAU/editorial-harvester/internal/storage/memory"
	"github.com/JakeFAU/editorial-harvester/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App holds the shared services built from one Config.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Fetcher    crawler.Fetcher
	Feeds      *orchestrator.Orchestrator
	Articles   *article.Service
	Crawler    *crawler.Paginated
	Queue      *queueMemory.Queue
	Jobs       *storage.JobStore
	Batches    *storage.BatchStore
	Dispatcher *dispatcher.Dispatcher
	// Scheduler is nil unless feeds.refresh_enabled is set.
	Scheduler *scheduler.Scheduler
}

// New wires every service around fetcher. A nil fetcher means the colly
// transport configured from cfg.
func New(cfg config.Config, fetcher crawler.Fetcher, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	if fetcher == nil {
		fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.BrowserHeaders().UserAgent,
			Timeout:   cfg.HTTPTimeout(),
		})
	}
	clock := system.New()
	ids := uuid.New()

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Fetcher: fetcher,
		Feeds: orchestrator.New(orchestrator.Config{
			Timeout: cfg.FeedTimeout(),
			Headers: cfg.FeedHeaders(),
		}, fetcher, clock, logger),
		Articles: article.New(article.Config{
			Headers: cfg.BrowserHeaders(),
			Timeout: cfg.HTTPTimeout(),
		}, fetcher, logger),
		Crawler: crawler.NewPaginated(cfg.CrawlerSettings(), fetcher, nil, ids, logger),
		Queue:   queueMemory.NewQueue(cfg.Crawler.QueueDepth),
		Jobs:    storage.NewJobStore(clock),
		Batches: storage.NewBatchStore(),
	}

	workers := make([]*worker.Worker, 0, cfg.Crawler.Workers)
	for i := 0; i < cfg.Crawler.Workers; i++ {
		workers = append(workers, worker.New(a.Queue, a.Jobs, a.Crawler, logger.With(zap.Int("index", i))))
	}
	a.Dispatcher = dispatcher.New(a.Queue, a.Jobs, ids, clock, workers)

	if cfg.Feeds.RefreshEnabled {
		sched, err := scheduler.New(cfg.Feeds.RefreshCron, cfg.Feeds.Sources, a.Feeds, a.Batches, logger)
		if err != nil {
			return nil, fmt.Errorf("init scheduler: %w", err)
		}
		a.Scheduler = sched
	}

	logger.Info("Application services initialized",
		zap.Int("workers", cfg.Crawler.Workers),
		zap.Int("feed_sources", len(cfg.Feeds.Sources)),
		zap.Bool("scheduled_refresh", a.Scheduler != nil),
	)
	return a, nil
}

// Handler builds the HTTP API over the app's services.
func (a *App) Handler() http.Handler {
	deps := api.Deps{
		Feeds:      a.Feeds,
		Articles:   a.Articles,
		Dispatcher: a.Dispatcher,
		JobStore:   a.Jobs,
	}
	if a.Scheduler != nil {
		deps.Batches = a.Batches
	}
	return api.NewServer(deps, a.Config, a.Logger).Handler()
}

// Serve runs the worker pool, the optional scheduler and the HTTP server
// until ctx is done, then shuts everything down.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		a.Logger.Info("Dispatcher started")
		a.Dispatcher.Run(ctx)
	}()

	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server started", zap.Int("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}
	a.Logger.Info("Shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown: %w", err))
	}
	if a.Scheduler != nil {
		<-a.Scheduler.Stop().Done()
	}
	cancel()
	a.Queue.Close()
	<-dispatchDone
	a.Logger.Info("Shutdown complete")
	return runErr
}

// Close releases resources held outside Serve.
func (a *App) Close() {
	a.Queue.Close()
}
