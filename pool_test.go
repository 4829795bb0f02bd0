package manguide

// Notes:
// - Enhancers created by the pool never launch Chrome here: the browser is
//   only started by EnhanceURL, which these tests do not call.
// - Acquire after Close receives from a closed channel and may return nil;
//   callers stop acquiring before closing, so it is not tested directly.

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() *Enhancer
	Release(*Enhancer)
	Size() int
	Close() error
} = (*EnhancerPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 100,
			want:    100,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "negative uses auto calculation",
			workers: -5,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestNewEnhancerPool(t *testing.T) {
	t.Parallel()

	t.Run("invalid options fail at creation", func(t *testing.T) {
		t.Parallel()

		_, err := NewEnhancerPool(2, WithContainerID(""))
		if !errors.Is(err, ErrInvalidContainerID) {
			t.Errorf("NewEnhancerPool() error = %v, want ErrInvalidContainerID", err)
		}
	})

	sizes := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := mustPool(t, tt.size)
			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEnhancerPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := mustPool(t, 2, WithTitle("Ref"))

	enh1 := pool.Acquire()
	enh2 := pool.Acquire()
	if enh1 == nil || enh2 == nil {
		t.Fatal("Acquire() returned nil")
	}
	if enh1 == enh2 {
		t.Error("expected different enhancer instances")
	}
	if enh2.cfg.title != "Ref" {
		t.Errorf("lazily created enhancer title = %q, want %q", enh2.cfg.title, "Ref")
	}

	pool.Release(enh1)
	if enh3 := pool.Acquire(); enh3 != enh1 {
		t.Error("expected to get back released enhancer")
	}

	pool.Release(enh1)
	pool.Release(enh2)
}

func TestEnhancerPool_AllAcquiredAreDistinct(t *testing.T) {
	t.Parallel()

	pool := mustPool(t, 3)

	seen := make(map[*Enhancer]bool)
	acquired := make([]*Enhancer, 0, 3)
	for i := 0; i < 3; i++ {
		enh := pool.Acquire()
		if seen[enh] {
			t.Error("got duplicate enhancer from pool")
		}
		seen[enh] = true
		acquired = append(acquired, enh)
	}

	for _, enh := range acquired {
		pool.Release(enh)
	}
}

// TestEnhancerPool_HighContention verifies the pool stays deadlock-free and
// never hands out more enhancers than its size.
func TestEnhancerPool_HighContention(t *testing.T) {
	t.Parallel()

	const size = 2
	pool := mustPool(t, size)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inUse   int
		maxUsed int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				enh := pool.Acquire()

				mu.Lock()
				inUse++
				maxUsed = max(maxUsed, inUse)
				mu.Unlock()

				time.Sleep(time.Duration(j%3) * time.Millisecond)

				mu.Lock()
				inUse--
				mu.Unlock()

				pool.Release(enh)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("high contention test timed out - possible deadlock")
	}

	if maxUsed > size {
		t.Errorf("max concurrent enhancers = %d, want <= %d", maxUsed, size)
	}
}

func TestEnhancerPool_Close(t *testing.T) {
	t.Parallel()

	t.Run("release after close is a no-op", func(t *testing.T) {
		t.Parallel()

		pool, err := NewEnhancerPool(2)
		if err != nil {
			t.Fatalf("NewEnhancerPool() unexpected error: %v", err)
		}
		enh := pool.Acquire()
		if err := pool.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		pool.Release(enh)
	})

	t.Run("release racing close does not panic", func(t *testing.T) {
		t.Parallel()

		for range 200 {
			pool, err := NewEnhancerPool(4)
			if err != nil {
				t.Fatalf("NewEnhancerPool() unexpected error: %v", err)
			}
			held := make([]*Enhancer, pool.Size())
			for i := range held {
				held[i] = pool.Acquire()
			}

			var wg sync.WaitGroup
			for _, enh := range held {
				wg.Add(1)
				go func() {
					defer wg.Done()
					pool.Release(enh)
				}()
			}
			if err := pool.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
			wg.Wait()
		}
	})

	t.Run("extra release is dropped", func(t *testing.T) {
		t.Parallel()

		pool := mustPool(t, 1)
		enh := pool.Acquire()
		pool.Release(enh)

		done := make(chan struct{})
		go func() {
			pool.Release(enh)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Release blocked on a full pool")
		}
	})

	t.Run("double close", func(t *testing.T) {
		t.Parallel()

		pool, err := NewEnhancerPool(1)
		if err != nil {
			t.Fatalf("NewEnhancerPool() unexpected error: %v", err)
		}
		if err := pool.Close(); err != nil {
			t.Errorf("first Close() error = %v", err)
		}
		if err := pool.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})
}

// mustPool creates a pool closed at test cleanup.
func mustPool(t *testing.T, n int, opts ...Option) *EnhancerPool {
	t.Helper()
	pool, err := NewEnhancerPool(n, opts...)
	if err != nil {
		t.Fatalf("NewEnhancerPool() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}
