package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trendradar/trendradar/internal/logger"
)

// Pool manages a fixed set of goroutines executing crawl tasks.
type Pool struct {
	taskQueue chan Task
	resultCh  chan Result
	workers   int
	executor  Executor
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *logger.Logger

	mu      sync.RWMutex
	metrics PoolMetrics
}

// NewPool creates a worker pool. The executor is invoked for every task.
func NewPool(workers, queueSize int, executor Executor, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultPoolSize
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		taskQueue: make(chan Task, queueSize),
		resultCh:  make(chan Result, queueSize),
		workers:   workers,
		executor:  executor,
		ctx:       ctx,
		cancel:    cancel,
		logger:    log,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool",
		logger.Field{Key: "workers", Value: p.workers},
		logger.Field{Key: "queue_size", Value: cap(p.taskQueue)})

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit enqueues a task, blocking if the queue is full.
func (p *Pool) Submit(task Task) {
	p.incrementSubmitted()
	p.logger.DebugCtx(p.ctx, "task submitted",
		logger.Field{Key: "task_id", Value: task.ID},
		logger.Field{Key: "task_type", Value: task.Type})
	p.taskQueue <- task
}

// SubmitWithContext enqueues a task or gives up when ctx expires.
func (p *Pool) SubmitWithContext(ctx context.Context, task Task) error {
	select {
	case p.taskQueue <- task:
		p.incrementSubmitted()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the channel task results are reported on.
func (p *Pool) Results() <-chan Result {
	return p.resultCh
}

// QueueSize returns the number of tasks waiting in the queue.
func (p *Pool) QueueSize() int {
	return len(p.taskQueue)
}

// Metrics returns a snapshot of the pool counters.
func (p *Pool) Metrics() PoolMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

// Stop cancels all workers and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()

	m := p.Metrics()
	p.logger.Info("worker pool stopped",
		logger.Field{Key: "tasks_submitted", Value: m.TasksSubmitted},
		logger.Field{Key: "tasks_completed", Value: m.TasksCompleted},
		logger.Field{Key: "tasks_failed", Value: m.TasksFailed})

	close(p.resultCh)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker panic recovered", fmt.Errorf("panic: %v", r),
				logger.Field{Key: "worker_id", Value: id})
		}
	}()

	p.logger.DebugCtx(p.ctx, "worker started", logger.Field{Key: "worker_id", Value: id})

	for {
		select {
		case task := <-p.taskQueue:
			p.processTask(id, task)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) processTask(workerID int, task Task) {
	start := time.Now()

	execCtx := p.ctx
	if task.Context != nil {
		execCtx = task.Context
	}

	result := p.executeTask(execCtx, task)
	result.Duration = time.Since(start)

	if result.Error != nil {
		p.incrementFailed()
	} else {
		p.incrementCompleted()
	}
	p.recordDuration(result.Duration)

	select {
	case p.resultCh <- result:
	case <-p.ctx.Done():
		p.logger.WarnCtx(p.ctx, "dropping result, pool shutting down",
			logger.Field{Key: "task_id", Value: task.ID})
	}

	p.logger.DebugCtx(p.ctx, "task processed",
		logger.Field{Key: "worker_id", Value: workerID},
		logger.Field{Key: "task_id", Value: task.ID},
		logger.Field{Key: "duration_ms", Value: result.Duration.Milliseconds()})
}

// executeTask runs the executor with panic recovery.
func (p *Pool) executeTask(ctx context.Context, task Task) Result {
	select {
	case <-ctx.Done():
		return Result{TaskID: task.ID, Error: ctx.Err()}
	default:
	}

	done := make(chan struct{})
	var output string
	var err error

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic during task execution: %v", r)
			}
		}()
		output, err = p.executor(ctx, task)
	}()

	select {
	case <-done:
		return Result{TaskID: task.ID, Output: output, Error: err}
	case <-ctx.Done():
		return Result{TaskID: task.ID, Error: ctx.Err()}
	}
}

func (p *Pool) incrementSubmitted() {
	p.mu.Lock()
	p.metrics.TasksSubmitted++
	p.mu.Unlock()
}

func (p *Pool) incrementCompleted() {
	p.mu.Lock()
	p.metrics.TasksCompleted++
	p.mu.Unlock()
}

func (p *Pool) incrementFailed() {
	p.mu.Lock()
	p.metrics.TasksFailed++
	p.mu.Unlock()
}

func (p *Pool) recordDuration(d time.Duration) {
	p.mu.Lock()
	p.metrics.TotalDuration += d
	p.mu.Unlock()
}
