package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WorkerPool runs queued jobs on a fixed number of goroutines.
type WorkerPool struct {
	runner   JobRunner
	workers  int
	interval time.Duration
	logger   *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWorkerPool creates a pool that polls the queue every interval while it is empty.
func NewWorkerPool(runner JobRunner, workers int, interval time.Duration, logger *zap.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &WorkerPool{
		runner:   runner,
		workers:  workers,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the workers. They stop when ctx is cancelled or Stop is called.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := range p.workers {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("job workers started", zap.Int("workers", p.workers))
}

// Stop cancels running jobs and waits for the workers to exit.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for ctx.Err() == nil {
		processed, err := p.runner.ProcessJobFromQueue(ctx)
		if err != nil {
			p.logger.Error("failed to process job", zap.Int("worker", id), zap.Error(err))
		}
		if processed && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.interval):
		}
	}
}
