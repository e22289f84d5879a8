package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	added := s.Add("https://example.com/1")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("https://example.com/1")
	if added {
		t.Error("second Add of same URL should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
	if s.Duplicates() != 1 {
		t.Errorf("duplicates: got %d, want 1", s.Duplicates())
	}
}

func TestURLSetConcurrency(t *testing.T) {
	s := NewURLSet()
	var added int64

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Add("https://example.com/same") {
				atomic.AddInt64(&added, 1)
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
	if s.Duplicates() != 99 {
		t.Errorf("duplicates: got %d, want 99", s.Duplicates())
	}
}

func TestWorkerPoolProcessesEveryTask(t *testing.T) {
	pool := NewWorkerPool[int, int](3, 2)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	var started, cleaned int64
	start := func(id int) (WorkerFunc[int, int], func(), error) {
		atomic.AddInt64(&started, 1)
		return func(_ context.Context, task Task[int]) int {
				return task.Item * task.Item
			}, func() {
				atomic.AddInt64(&cleaned, 1)
			}, nil
	}

	got := make(map[int]int)
	err := pool.Run(context.Background(), items, start, func(r Result[int]) {
		got[r.Index] = r.Value
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(got) != len(items) {
		t.Fatalf("results: got %d, want %d", len(got), len(items))
	}
	for i, item := range items {
		if got[i] != item*item {
			t.Errorf("result %d: got %d, want %d", i, got[i], item*item)
		}
	}
	if started != 3 || cleaned != 3 {
		t.Errorf("workers started/cleaned: got %d/%d, want 3/3", started, cleaned)
	}
}

func TestWorkerPoolWorkersOwnState(t *testing.T) {
	pool := NewWorkerPool[int, int](4, 4)
	items := make([]int, 40)

	start := func(id int) (WorkerFunc[int, int], func(), error) {
		owner := id
		return func(_ context.Context, _ Task[int]) int {
			time.Sleep(time.Millisecond)
			return owner
		}, nil, nil
	}

	owners := make(map[int]bool)
	err := pool.Run(context.Background(), items, start, func(r Result[int]) {
		owners[r.Value] = true
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for owner := range owners {
		if owner < 1 || owner > 4 {
			t.Errorf("unexpected worker id %d", owner)
		}
	}
}

func TestWorkerPoolAllWorkersFailToStart(t *testing.T) {
	pool := NewWorkerPool[int, int](2, 1)
	boom := errors.New("no browser")

	start := func(id int) (WorkerFunc[int, int], func(), error) {
		return nil, nil, boom
	}

	calls := 0
	err := pool.Run(context.Background(), []int{1, 2, 3}, start, func(Result[int]) { calls++ })
	if err == nil {
		t.Fatal("expected error when no worker starts")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the start failure, got %v", err)
	}
	if calls != 0 {
		t.Errorf("onResult calls: got %d, want 0", calls)
	}
}

func TestWorkerPoolSingleWorkerKeepsInputOrder(t *testing.T) {
	pool := NewWorkerPool[string, string](1, 1)
	items := []string{"a", "b", "c", "d"}

	start := func(int) (WorkerFunc[string, string], func(), error) {
		return func(_ context.Context, task Task[string]) string { return task.Item }, nil, nil
	}

	var order []string
	if err := pool.Run(context.Background(), items, start, func(r Result[string]) {
		order = append(order, r.Value)
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := range items {
		if order[i] != items[i] {
			t.Errorf("position %d: got %q, want %q", i, order[i], items[i])
		}
	}
}

func TestWorkerPoolCancelledContext(t *testing.T) {
	pool := NewWorkerPool[int, int](2, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := func(int) (WorkerFunc[int, int], func(), error) {
		return func(_ context.Context, task Task[int]) int { return task.Item }, nil, nil
	}

	err := pool.Run(ctx, []int{1, 2, 3, 4, 5}, start, func(Result[int]) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
