package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadPage  = errors.New("failed to read page")
	ErrWritePage = errors.New("failed to write page")
	ErrOutputDir = errors.New("failed to create output directory")
)

// PageEnhancer is the static enhancement surface used by enhance and watch.
type PageEnhancer interface {
	Enhance(ctx context.Context, input manguide.Input) (*manguide.Result, error)
}

// Compile-time interface implementation check.
var _ PageEnhancer = (*manguide.Enhancer)(nil)

// EnhanceResult holds the outcome of a single page.
type EnhanceResult struct {
	Page              PageToEnhance
	Crumbs            int
	BreadcrumbApplied bool
	Highlight         manguide.HighlightStats
	Err               error
	Duration          time.Duration
}

// enhanceBatch processes pages concurrently. Enhancer.Enhance is safe for
// concurrent use, so workers share enh.
func enhanceBatch(ctx context.Context, enh PageEnhancer, pages []PageToEnhance, workers int, dryRun bool) []EnhanceResult {
	if len(pages) == 0 {
		return nil
	}

	concurrency := max(1, min(workers, len(pages)))

	results := make([]EnhanceResult, len(pages))
	var wg sync.WaitGroup
	jobs := make(chan int, len(pages))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = EnhanceResult{Page: pages[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = enhanceFile(ctx, enh, pages[idx], dryRun)
			}
		}()
	}

	for i := range pages {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// enhanceFile processes a single page and returns the result.
func enhanceFile(ctx context.Context, enh PageEnhancer, p PageToEnhance, dryRun bool) (result EnhanceResult) {
	start := time.Now()
	result.Page = p
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(p.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadPage, err)
		return result
	}

	res, err := enh.Enhance(ctx, manguide.Input{HTML: string(content), Path: p.PagePath})
	if err != nil {
		result.Err = err
		return result
	}
	result.Crumbs = len(res.Crumbs)
	result.BreadcrumbApplied = res.BreadcrumbApplied
	result.Highlight = res.Highlight

	if dryRun {
		return result
	}

	if p.OutputPath != p.InputPath {
		if err := os.MkdirAll(filepath.Dir(p.OutputPath), dirPermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrOutputDir, err)
			return result
		}
	}

	// #nosec G306 -- pages are meant to be served
	if err := fileutil.WriteFileAtomic(p.OutputPath, res.HTML, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePage, err)
		return result
	}
	return result
}
