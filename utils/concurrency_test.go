package utils

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStringSetNoDuplicates(t *testing.T) {
	s := NewStringSet()

	if !s.Add("Running Shoe") {
		t.Error("first Add should return true")
	}
	if s.Add("Running Shoe") {
		t.Error("second Add of same value should return false")
	}
	s.Add("Trail Boot")

	if s.Size() != 2 {
		t.Errorf("size: got %d, want 2", s.Size())
	}
	got := s.Values()
	if len(got) != 2 || got[0] != "Running Shoe" || got[1] != "Trail Boot" {
		t.Errorf("values: got %v, want insertion order", got)
	}
}

func TestStringSetConcurrency(t *testing.T) {
	s := NewStringSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("same title") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 50
	pool := NewWorkerPool(1, rateLimitMs)

	var mu sync.Mutex
	var timestamps []time.Time

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	minGap := time.Duration(rateLimitMs) * time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		if gap := timestamps[i].Sub(timestamps[i-1]); gap < minGap {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, minGap)
		}
	}
}

func TestSubmitBatches(t *testing.T) {
	titles := []string{"a", "b", "c", "d", "e"}
	pool := NewWorkerPool(3, 0)

	var mu sync.Mutex
	got := make(map[int][]string)
	n := SubmitBatches(pool, titles, 2, func(batchNo int, batch []string) {
		mu.Lock()
		defer mu.Unlock()
		got[batchNo] = batch
	})
	pool.Wait()

	if n != 3 {
		t.Fatalf("batches: got %d, want 3", n)
	}
	want := map[int]string{1: "a,b", 2: "c,d", 3: "e"}
	for no, joined := range want {
		if strings.Join(got[no], ",") != joined {
			t.Errorf("batch %d: got %v, want %s", no, got[no], joined)
		}
	}
}

func TestSubmitBatchesEdgeSizes(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	if n := SubmitBatches(pool, []string(nil), 10, func(int, []string) { t.Error("no job expected") }); n != 0 {
		t.Errorf("empty input: got %d batches, want 0", n)
	}

	var sizes []int
	var mu sync.Mutex
	n := SubmitBatches(pool, []string{"a", "b", "c"}, 0, func(_ int, batch []string) {
		mu.Lock()
		sizes = append(sizes, len(batch))
		mu.Unlock()
	})
	pool.Wait()
	if n != 1 || len(sizes) != 1 || sizes[0] != 3 {
		t.Errorf("non-positive size: got %d batches of %v, want one batch of 3", n, sizes)
	}
}
