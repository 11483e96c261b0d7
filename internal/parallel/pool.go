// Package parallel provides bounded parallel execution for independent
// solve jobs. Each job owns its own scheduler and engine; the pool only
// bounds how many run at once.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// WorkerPool manages a fixed set of goroutines that run submitted tasks.
// The task channel is buffered, so Submit blocks once every worker is
// busy and the buffer is full.
type WorkerPool struct {
	maxWorkers int
	taskChan   chan func()
	workerWg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If maxWorkers is 0 or negative, it defaults to the number of CPU cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers: maxWorkers,
		taskChan:   make(chan func(), maxWorkers*2),
	}
	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}
	return pool
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.maxWorkers
}

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()
	for task := range wp.taskChan {
		task()
	}
}

// Submit queues a task. It blocks while the queue is full and fails with
// ctx's error if ctx ends first, or with ErrPoolShutdown after Shutdown.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolShutdown
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ForEach runs task(i) for every i in [0, n) on the pool and waits for
// the submitted tasks to finish. When ctx ends or the pool shuts down
// before every index is submitted, the remaining indexes are skipped and
// the error is returned after the submitted tasks complete.
func (wp *WorkerPool) ForEach(ctx context.Context, n int, task func(i int)) error {
	var wg sync.WaitGroup
	var err error
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		if err = wp.Submit(ctx, func() {
			defer wg.Done()
			task(i)
		}); err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()
	return err
}

// Shutdown stops accepting tasks, lets the workers finish every queued
// task and waits for them to exit. It is safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.taskChan)
	wp.mu.Unlock()
	wp.workerWg.Wait()
}
