package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversAllIndices(t *testing.T) {
	const items = 1000
	seen := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, n := range seen {
		if n != 1 {
			t.Fatalf("index %d visited %d times, want exactly once", i, n)
		}
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) {
		called = true
	})
	if called {
		t.Error("fn should not be called for zero items")
	}
}

func TestParallelizeNWorkerBound(t *testing.T) {
	// With more workers than items, each item gets its own range.
	var calls int32
	ParallelizeN(3, 16, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if end-start != 1 {
			t.Errorf("range [%d,%d) should cover exactly one item", start, end)
		}
	})
	if calls != 3 {
		t.Errorf("expected 3 ranges, got %d", calls)
	}
}

func TestParallelizeNSingleWorkerIsSequential(t *testing.T) {
	const items = 50
	next := 0
	ParallelizeN(items, 1, func(start, end int) {
		if start != 0 || end != items {
			t.Fatalf("single worker should get [0,%d), got [%d,%d)", items, start, end)
		}
		for i := start; i < end; i++ {
			if i != next {
				t.Fatalf("out-of-order visit: got %d, want %d", i, next)
			}
			next++
		}
	})
	if next != items {
		t.Errorf("visited %d items, want %d", next, items)
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	// Below threshold: exactly one sequential call over the whole range.
	var calls int32
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 10 {
			t.Errorf("sequential call should cover [0,10), got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected 1 sequential call, got %d", calls)
	}

	// Above threshold: all indices still covered exactly once.
	const items = 512
	seen := make([]int32, items)
	ParallelizeWithThreshold(items, 100, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("index %d visited %d times, want exactly once", i, n)
		}
	}
}
