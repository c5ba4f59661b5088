// Package workers provides an async worker pool for crawl task execution.
// Tasks are submitted at container startup and by the manual-trigger API
// and executed concurrently, with results reported on a channel.
package workers

import (
	"context"
	"time"
)

// Task types understood by the pipeline executor. Scheduled ticks run
// synchronously in the scheduler so overlapping runs can be skipped;
// only startup and API-triggered crawls go through the pool.
const (
	TaskTypeStartupCrawl = "crawl.startup"
	TaskTypeManualCrawl  = "crawl.manual"
)

// Task is a unit of work for the pool.
type Task struct {
	ID      string          // Unique task identifier
	Type    string          // Task type, one of the TaskType constants
	Payload any             // Task payload (platform subset, trigger source)
	Context context.Context // Task-specific context for cancellation/timeout
}

// Executor runs one task and returns a short result description.
type Executor func(ctx context.Context, task Task) (string, error)

// Result is the outcome of a task execution.
type Result struct {
	TaskID   string
	Error    error
	Output   string
	Duration time.Duration
}

// PoolMetrics tracks execution counters for the pool.
type PoolMetrics struct {
	TasksSubmitted uint64        `json:"tasks_submitted"`
	TasksCompleted uint64        `json:"tasks_completed"`
	TasksFailed    uint64        `json:"tasks_failed"`
	TotalDuration  time.Duration `json:"total_duration"`
}

const (
	DefaultPoolSize  = 5
	DefaultQueueSize = 100
)
