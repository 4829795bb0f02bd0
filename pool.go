package manguide

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// EnhancerPool manages Enhancer instances for parallel live capture.
// Each enhancer owns its own browser, so captures run truly in parallel.
// Enhancers after the first are created lazily on acquire.
type EnhancerPool struct {
	size      int
	opts      []Option
	enhancers []*Enhancer
	sem       chan *Enhancer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewEnhancerPool creates a pool with capacity for n enhancers sharing opts.
// One enhancer is created immediately so invalid options fail here rather
// than inside a worker.
func NewEnhancerPool(n int, opts ...Option) (*EnhancerPool, error) {
	if n < 1 {
		n = 1
	}

	first, err := NewEnhancer(opts...)
	if err != nil {
		return nil, err
	}

	p := &EnhancerPool{
		size:      n,
		opts:      opts,
		enhancers: make([]*Enhancer, 0, n),
		sem:       make(chan *Enhancer, n),
		created:   1,
	}
	p.enhancers = append(p.enhancers, first)
	p.sem <- first
	return p, nil
}

// Acquire gets an enhancer from the pool, creating one if needed.
// Blocks if all enhancers are in use.
func (p *EnhancerPool) Acquire() *Enhancer {
	// Try to get an existing enhancer (non-blocking)
	select {
	case enh := <-p.sem:
		return enh
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Options were validated by the first enhancer.
		enh, _ := NewEnhancer(p.opts...)

		p.mu.Lock()
		p.enhancers = append(p.enhancers, enh)
		p.mu.Unlock()

		return enh
	}
	p.mu.Unlock()

	// All enhancers created, wait for one to be released
	return <-p.sem
}

// Release returns an enhancer to the pool. Releasing into a closed pool is a
// no-op. The send happens under the lock so it cannot race with Close closing
// the channel; it never blocks because the channel holds every enhancer the
// pool can create.
func (p *EnhancerPool) Release(enh *Enhancer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.sem <- enh:
	default: // released more often than acquired
	}
}

// Close releases all browser resources.
// Returns an aggregated error if multiple enhancers fail to close.
func (p *EnhancerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	enhancers := p.enhancers
	p.mu.Unlock()

	var errs []error
	for _, enh := range enhancers {
		if err := enh.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *EnhancerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
