package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/fileutil"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// stdoutTarget selects standard output for a single capture.
const stdoutTarget = "-"

// captureTarget is one page to load in the browser.
type captureTarget struct {
	Target     string
	OutputPath string // empty when writing to stdout
}

// CaptureResult holds the outcome of a single capture.
type CaptureResult struct {
	Target   captureTarget
	HTML     []byte
	Result   *manguide.Result
	Err      error
	Duration time.Duration
}

// runCaptureCmd parses flags and runs the capture command.
func runCaptureCmd(ctx context.Context, args []string, env *Environment) error {
	flags, targets, err := parseCaptureFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runCapture(ctx, targets, flags, env)
}

// runCapture enhances each target in headless Chrome and saves the result.
func runCapture(ctx context.Context, targets []string, flags *captureFlags, env *Environment) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: capture needs at least one URL or file", ErrNoInput)
	}

	s, err := resolveSettings(flags.common.config, &flags.page, "", flags.workers)
	if err != nil {
		return err
	}

	outputDir := resolveOutputDir(flags.output, s.cfg)
	if outputDir == stdoutTarget && len(targets) > 1 {
		return fmt.Errorf("%w: -o - accepts a single target, got %d", ErrUsage, len(targets))
	}
	if outputDir == "" {
		outputDir = "."
	}

	jobs := planCaptures(targets, outputDir)

	enhPool, err := manguide.NewEnhancerPool(min(s.workers, len(jobs)), s.options(env.Logger)...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := enhPool.Close(); cerr != nil {
			env.Logger.Warn("closing browsers", zap.Error(cerr))
		}
	}()

	results := captureBatch(ctx, &poolAdapter{pool: enhPool}, jobs)

	if outputDir == stdoutTarget {
		r := results[0]
		if r.Err != nil {
			return r.Err
		}
		_, err := env.Stdout.Write(r.HTML)
		return err
	}

	failed := printCaptureResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		if failed == len(results) {
			// Surface the cause so the exit code reflects it.
			return fmt.Errorf("%d capture(s) failed: %w", failed, results[0].Err)
		}
		return fmt.Errorf("%d capture(s) failed", failed)
	}
	return nil
}

// planCaptures maps targets to output files in outputDir. Targets sharing a
// base name get a numeric suffix ("guide.html", "guide-2.html") so no two
// captures write the same file.
func planCaptures(targets []string, outputDir string) []captureTarget {
	jobs := make([]captureTarget, len(targets))
	taken := make(map[string]bool, len(targets))
	for i, t := range targets {
		jobs[i] = captureTarget{Target: t}
		if outputDir != stdoutTarget {
			jobs[i].OutputPath = filepath.Join(outputDir, uniqueFileName(captureFileName(t), taken))
		}
	}
	return jobs
}

// uniqueFileName returns name, or name with the first free "-N" suffix, and
// marks the result as taken. Names compare case-insensitively so the plan
// also holds on case-insensitive file systems.
func uniqueFileName(name string, taken map[string]bool) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 2; taken[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	taken[strings.ToLower(candidate)] = true
	return candidate
}

// captureFileName derives an .html file name from a URL or file path.
func captureFileName(target string) string {
	name := ""
	if fileutil.IsURL(target) {
		if u, err := url.Parse(target); err == nil {
			name = path.Base(u.Path)
		}
	} else {
		name = filepath.Base(target)
	}

	if name == "" || name == "." || name == "/" {
		name = "index"
	}
	if !fileutil.IsHTMLFile(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".html"
	}
	return name
}

// captureBatch loads targets with at most pool.Size() browsers at once.
func captureBatch(ctx context.Context, pool Pool, jobs []captureTarget) []CaptureResult {
	results := make([]CaptureResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(pool.Size())

	for i, job := range jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = CaptureResult{Target: job, Err: ctx.Err()}
				return nil
			}

			enh := pool.Acquire()
			defer pool.Release(enh)

			results[i] = captureOne(ctx, enh, job)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// captureOne enhances a single target and writes it when an output path is set.
func captureOne(ctx context.Context, enh URLEnhancer, job captureTarget) (result CaptureResult) {
	start := time.Now()
	result.Target = job
	defer func() { result.Duration = time.Since(start) }()

	res, err := enh.EnhanceURL(ctx, job.Target)
	if err != nil {
		result.Err = err
		return result
	}
	result.Result = res
	result.HTML = res.HTML

	if job.OutputPath == "" {
		return result
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrOutputDir, err)
		return result
	}
	// #nosec G306 -- pages are meant to be served
	if err := fileutil.WriteFileAtomic(job.OutputPath, res.HTML, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePage, err)
	}
	return result
}

// printCaptureResults outputs capture results and returns the failure count.
func printCaptureResults(results []CaptureResult, quiet, verbose bool, env *Environment) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Target.Target, r.Err)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d crumbs, %d comments, %d commands, %v)\n",
				r.Target.Target, r.Target.OutputPath, len(r.Result.Crumbs),
				r.Result.Highlight.Comments, r.Result.Highlight.Commands, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Captured %s\n", r.Target.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
