package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is one unit of work tagged with its position in the input.
type Task[T any] struct {
	Index int
	Item  T
}

// Result is the output of one Task, carrying the same Index.
type Result[R any] struct {
	Index int
	Value R
}

// WorkerFunc processes a single task on the worker that owns it.
type WorkerFunc[T, R any] func(ctx context.Context, task Task[T]) R

// WorkerStart prepares per-worker state (a browser session, for example) and
// returns the function that processes tasks plus a cleanup run when the worker exits.
type WorkerStart[T, R any] func(workerID int) (WorkerFunc[T, R], func(), error)

// WorkerPool runs tasks on a fixed number of workers fed by a bounded queue.
// Each worker owns whatever its WorkerStart creates; nothing is shared
// between workers except the result channel.
type WorkerPool[T, R any] struct {
	workers   int
	queueSize int
}

// NewWorkerPool creates a WorkerPool. Both sizes are clamped to at least one.
func NewWorkerPool[T, R any](workers, queueSize int) *WorkerPool[T, R] {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}
	return &WorkerPool[T, R]{workers: workers, queueSize: queueSize}
}

// Workers returns the number of workers the pool starts.
func (wp *WorkerPool[T, R]) Workers() int {
	return wp.workers
}

// Run feeds items to the workers and calls onResult, on the caller's goroutine,
// for every finished task in completion order. It returns when all tasks are
// done, ctx is cancelled, or every worker has exited.
func (wp *WorkerPool[T, R]) Run(ctx context.Context, items []T, start WorkerStart[T, R], onResult func(Result[R])) error {
	tasks := make(chan Task[T], wp.queueSize)
	results := make(chan Result[R], wp.queueSize)
	allExited := make(chan struct{})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		startErrs []error
	)

	for id := 1; id <= wp.workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			handle, cleanup, err := start(id)
			if err != nil {
				mu.Lock()
				startErrs = append(startErrs, fmt.Errorf("worker %d: %w", id, err))
				mu.Unlock()
				return
			}
			if cleanup != nil {
				defer cleanup()
			}

			for task := range tasks {
				if ctx.Err() != nil {
					return
				}
				results <- Result[R]{Index: task.Index, Value: handle(ctx, task)}
			}
		}(id)
	}

	go func() {
		wg.Wait()
		close(allExited)
		close(results)
	}()

	go func() {
		defer close(tasks)
		for i, item := range items {
			select {
			case tasks <- Task[T]{Index: i, Item: item}:
			case <-ctx.Done():
				return
			case <-allExited:
				return
			}
		}
	}()

	processed := 0
	for res := range results {
		processed++
		onResult(res)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if processed < len(items) {
		return fmt.Errorf("worker pool: %d of %d tasks unprocessed: %w",
			len(items)-processed, len(items), errors.Join(startErrs...))
	}
	return nil
}

// URLSet is a thread-safe set for tracking seen URLs.
type URLSet struct {
	mu         sync.RWMutex
	seen       map[string]struct{}
	duplicates int
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
// Repeated URLs are counted, not rejected by callers.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		s.duplicates++
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Duplicates returns how many Add calls hit an existing URL.
func (s *URLSet) Duplicates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duplicates
}
