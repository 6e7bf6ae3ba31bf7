package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// WorkerPool runs named jobs on a bounded number of goroutines and collects
// their errors. Jobs that would start after ctx is done are skipped.
type WorkerPool struct {
	ctx       context.Context
	semaphore chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	errs      []error
}

// NewWorkerPool creates a WorkerPool running at most maxWorkers jobs at once.
func NewWorkerPool(ctx context.Context, maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		ctx:       ctx,
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// Submit schedules job. It blocks while all workers are busy.
func (wp *WorkerPool) Submit(name string, job func(ctx context.Context) error) {
	select {
	case wp.semaphore <- struct{}{}:
	case <-wp.ctx.Done():
		wp.record(name, wp.ctx.Err())
		return
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		if err := wp.ctx.Err(); err != nil {
			wp.record(name, err)
			return
		}
		wp.record(name, job(wp.ctx))
	}()
}

// Wait blocks until every submitted job has finished and returns their
// errors joined, each prefixed with the job name.
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return errors.Join(wp.errs...)
}

func (wp *WorkerPool) record(name string, err error) {
	if err == nil {
		return
	}
	wp.mu.Lock()
	wp.errs = append(wp.errs, fmt.Errorf("%s: %w", name, err))
	wp.mu.Unlock()
}

// StringSet is a thread-safe set, used to skip input sources that were already queued.
type StringSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add returns true if the value was newly added, false if already present.
func (s *StringSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	return true
}

// Contains returns true if the value has already been added.
func (s *StringSet) Contains(v string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[v]
	return exists
}

// Size returns the number of unique values tracked.
func (s *StringSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
