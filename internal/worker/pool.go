// Package worker реализует пул воркеров для обработки обновлений бота.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ошибки пула
var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Job задача для обработки
type Job struct {
	UpdateID int
	UserID   int64
	Action   string
	Handler  func(ctx context.Context) error
}

// Stats снимок метрик пула
type Stats struct {
	ProcessedJobs  int64
	FailedJobs     int64
	ProcessingTime time.Duration
	QueueSize      int
}

// Pool пул воркеров с ограниченной очередью
type Pool struct {
	workers  int
	jobQueue chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *zap.Logger

	statsMu sync.Mutex
	stats   Stats

	mu      sync.RWMutex
	stopped bool
}

// NewPool создает новый пул воркеров
func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Start запускает воркеры
func (p *Pool) Start() {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.workers))

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop закрывает очередь и дожидается обработки уже принятых задач
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool")
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// Submit добавляет задачу в очередь без блокировки
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.jobQueue <- job:
		p.statsMu.Lock()
		p.stats.QueueSize = len(p.jobQueue)
		p.statsMu.Unlock()
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for job := range p.jobQueue {
		p.processJob(job, id)
	}

	p.logger.Debug("Worker stopping", zap.Int("worker_id", id))
}

func (p *Pool) processJob(job Job, workerID int) {
	start := time.Now()
	err := job.Handler(p.ctx)
	duration := time.Since(start)

	p.statsMu.Lock()
	if err != nil {
		p.stats.FailedJobs++
	} else {
		p.stats.ProcessedJobs++
	}
	p.stats.ProcessingTime += duration
	p.stats.QueueSize = len(p.jobQueue)
	p.statsMu.Unlock()

	if err != nil {
		p.logger.Error("Job processing failed",
			zap.Int("worker_id", workerID),
			zap.Int("update_id", job.UpdateID),
			zap.String("action", job.Action),
			zap.Int64("user_id", job.UserID),
			zap.Error(err))
		return
	}

	p.logger.Debug("Job processed",
		zap.Int("worker_id", workerID),
		zap.Int("update_id", job.UpdateID),
		zap.Duration("duration", duration))
}

// Stats возвращает текущие метрики
func (p *Pool) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}
