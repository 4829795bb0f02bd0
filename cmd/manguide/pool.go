package main

import (
	"context"
	"fmt"

	manguide "github.com/alnah/go-manguide"
)

// URLEnhancer is the live enhancement surface used by capture.
type URLEnhancer interface {
	EnhanceURL(ctx context.Context, target string) (*manguide.Result, error)
}

// Compile-time interface implementation check.
var _ URLEnhancer = (*manguide.Enhancer)(nil)

// Pool abstracts enhancer pool operations for testability.
type Pool interface {
	Acquire() URLEnhancer
	Release(URLEnhancer)
	Size() int
}

// poolAdapter adapts manguide.EnhancerPool to the Pool interface.
type poolAdapter struct {
	pool *manguide.EnhancerPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() URLEnhancer {
	return a.pool.Acquire()
}

// Release panics when given an enhancer the pool did not hand out.
func (a *poolAdapter) Release(e URLEnhancer) {
	enh, ok := e.(*manguide.Enhancer)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(enh)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}
