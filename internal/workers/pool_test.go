package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trendradar/trendradar/internal/logger"
)

func createTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func TestPool_ExecutesTasks(t *testing.T) {
	var executed atomic.Int64
	pool := NewPool(2, 10, func(ctx context.Context, task Task) (string, error) {
		executed.Add(1)
		return "ok", nil
	}, createTestLogger(t))
	pool.Start()

	for i := 0; i < 5; i++ {
		pool.Submit(Task{ID: "t", Type: "crawl.manual"})
	}

	for i := 0; i < 5; i++ {
		select {
		case res := <-pool.Results():
			if res.Error != nil {
				t.Errorf("task failed: %v", res.Error)
			}
			if res.Output != "ok" {
				t.Errorf("output = %q", res.Output)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for results")
		}
	}

	if executed.Load() != 5 {
		t.Errorf("executed = %d, want 5", executed.Load())
	}

	pool.Stop()

	m := pool.Metrics()
	if m.TasksSubmitted != 5 || m.TasksCompleted != 5 || m.TasksFailed != 0 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestPool_ReportsFailures(t *testing.T) {
	wantErr := errors.New("fetch failed")
	pool := NewPool(1, 10, func(ctx context.Context, task Task) (string, error) {
		return "", wantErr
	}, createTestLogger(t))
	pool.Start()
	defer pool.Stop()

	pool.Submit(Task{ID: "bad"})

	select {
	case res := <-pool.Results():
		if !errors.Is(res.Error, wantErr) {
			t.Errorf("error = %v, want %v", res.Error, wantErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestPool_RecoversFromPanic(t *testing.T) {
	pool := NewPool(1, 10, func(ctx context.Context, task Task) (string, error) {
		panic("boom")
	}, createTestLogger(t))
	pool.Start()
	defer pool.Stop()

	pool.Submit(Task{ID: "panicky"})

	select {
	case res := <-pool.Results():
		if res.Error == nil {
			t.Error("expected error from panicking task")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestPool_SubmitWithContext(t *testing.T) {
	block := make(chan struct{})
	pool := NewPool(1, 1, func(ctx context.Context, task Task) (string, error) {
		<-block
		return "", nil
	}, createTestLogger(t))
	pool.Start()
	defer func() {
		close(block)
		pool.Stop()
	}()

	// Occupy the worker and fill the queue.
	pool.Submit(Task{ID: "a"})
	if err := pool.SubmitWithContext(context.Background(), Task{ID: "b"}); err != nil {
		t.Fatalf("SubmitWithContext() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := pool.SubmitWithContext(ctx, Task{ID: "c"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
