package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

const (
	queueSize   = 1000
	taskTimeout = 30 * time.Second
)

type WorkerPool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool // thread-safe value
	closeMu   sync.RWMutex
	logger    *zap.Logger
}

func NewWorkerPool(size int, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		taskQueue: make(chan Task, queueSize),
		logger:    logger,
	}

	// Start the workers
	for i := 0; i < size; i++ {
		wp.wg.Add(1) // add to WaitGroup
		go wp.startWorker()
	}

	return wp
}

func (wp *WorkerPool) startWorker() {
	defer wp.wg.Done() // signal when worker finished
	for task := range wp.taskQueue {
		wp.run(task)
	}
}

func (wp *WorkerPool) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("Worker task panicked", zap.Any("panic", r))
		}
	}()
	if err := task(ctx); err != nil {
		wp.logger.Warn("Worker task failed", zap.Error(err))
	}
}

// Submit queues t and reports whether it was accepted.
func (wp *WorkerPool) Submit(t Task) bool {
	wp.closeMu.RLock()
	defer wp.closeMu.RUnlock()
	if wp.isClosing.Load() {
		wp.logger.Warn("Task submitted during shutdown, dropping")
		return false
	}
	select {
	case wp.taskQueue <- t: // send task to worker pool
		return true
	default:
		wp.logger.Warn("Task queue full, dropping task")
		return false
	}
}

// Shutdown closes the queue and waits for workers to finish
func (wp *WorkerPool) Shutdown() {
	wp.closeMu.Lock()
	if !wp.isClosing.CompareAndSwap(false, true) {
		wp.closeMu.Unlock()
		return
	}
	close(wp.taskQueue) // Stop accepting new tasks
	wp.closeMu.Unlock()
	wp.wg.Wait() // Wait for all active workers to finish tasks
}
