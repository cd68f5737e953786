// Package scheduler refreshes the configured feed sources on a cron schedule
// and keeps the most recent merged batch.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

// Runner executes one feed orchestration.
type Runner interface {
	Run(ctx context.Context, sources []orchestrator.Source) orchestrator.Batch
}

// Sink receives every completed batch.
type Sink interface {
	Put(batch orchestrator.Batch)
}

// Scheduler owns a cron instance with a single refresh entry.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	sources []orchestrator.Source
	runner  Runner
	sink    Sink
	logger  *zap.Logger
	job     cron.Job

	// initial tracks the refresh Start kicks off outside the cron loop.
	initial sync.WaitGroup

	mu  sync.Mutex
	ctx context.Context
}

// New validates spec and registers the refresh job. Overlapping runs are
// skipped rather than queued.
func New(spec string, sources []orchestrator.Source, runner Runner, sink Sink, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl)),
		spec:    spec,
		sources: append([]orchestrator.Source(nil), sources...),
		runner:  runner,
		sink:    sink,
		logger:  logger,
		ctx:     context.Background(),
	}
	// Scheduled and initial runs share one wrapper so they never overlap.
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.tick))
	if _, err := s.cron.AddJob(spec, s.job); err != nil {
		return nil, fmt.Errorf("schedule feed refresh %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduling and kicks off one refresh immediately. Runs use ctx
// until Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.logger.Info("Feed refresh scheduled", zap.String("spec", s.spec), zap.Int("sources", len(s.sources)))
	s.cron.Start()
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.job.Run()
	}()
}

// Stop halts scheduling. The returned context is done once running jobs,
// including the initial refresh, finish.
func (s *Scheduler) Stop() context.Context {
	cronDone := s.cron.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.initial.Wait()
		cancel()
	}()
	return ctx
}

// RunOnce refreshes every source now and hands the batch to the sink.
func (s *Scheduler) RunOnce(ctx context.Context) orchestrator.Batch {
	batch := s.runner.Run(ctx, s.sources)
	if s.sink != nil {
		s.sink.Put(batch)
	}
	s.logger.Info("Feed refresh complete",
		zap.Int("items", len(batch.Items)),
		zap.Strings("failed_sources", batch.FailedSources),
	)
	return batch
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.RunOnce(ctx)
}

// cronLogger routes cron's key/value logging through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
