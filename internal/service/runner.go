package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"question-bank/internal/domain"
)

// TaskRunner spawns detached background tasks that share a root context.
// Shutdown cancels that context and waits for tasks to return.
type TaskRunner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger domain.Logger
}

func NewTaskRunner(logger domain.Logger) *TaskRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskRunner{ctx: ctx, cancel: cancel, logger: logger}
}

// Go runs fn in its own goroutine. Panics are recovered and logged.
func (r *TaskRunner) Go(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Background task panicked", fmt.Errorf("%v", rec), "task", name)
			}
		}()

		started := time.Now()
		fn(r.ctx)
		r.logger.Debug("Background task finished", "task", name, "duration", time.Since(started).String())
	}()
}

// Shutdown cancels running tasks and waits up to timeout for them to exit.
func (r *TaskRunner) Shutdown(timeout time.Duration) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("background tasks still running after %v", timeout)
	}
}
