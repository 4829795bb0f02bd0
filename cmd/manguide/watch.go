package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/fileutil"
	"github.com/alnah/go-manguide/internal/watch"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// runWatchCmd parses flags and runs the watch command.
func runWatchCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runWatch(ctx, positional, flags, env)
}

// runWatch enhances the input tree once, then re-enhances pages as they
// change until ctx is canceled.
func runWatch(ctx context.Context, positional []string, flags *watchFlags, env *Environment) error {
	s, err := resolveSettings(flags.common.config, &flags.page, flags.basePath, flags.workers)
	if err != nil {
		return err
	}

	inputDir, err := resolveInputPath(positional, s.cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, s.cfg)
	if err := validateWatchDirs(inputDir, outputDir); err != nil {
		return err
	}

	enh, err := manguide.NewEnhancer(s.options(env.Logger)...)
	if err != nil {
		return err
	}
	defer enh.Close()

	mode := outputMode{quiet: flags.common.quiet, verbose: flags.common.verbose}
	basePath := s.cfg.Site.BasePath

	pages, err := discoverPages(inputDir, outputDir, basePath)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	printResults(enhanceBatch(ctx, enh, pages, s.workers, false), mode, env)

	onChange := func(files []string) {
		changed := make([]PageToEnhance, 0, len(files))
		for _, f := range files {
			if fileutil.FileExists(f) {
				changed = append(changed, pageFor(inputDir, outputDir, basePath, f))
			}
		}
		printResults(enhanceBatch(ctx, enh, changed, s.workers, false), mode, env)
	}

	w, err := watch.New(flags.debounce, fileutil.IsHTMLFile, onChange, env.Logger)
	if err != nil {
		return err
	}
	if err := w.AddTree(inputDir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", inputDir, err)
	}

	if !mode.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", inputDir)
	}
	env.Logger.Debug("watch started",
		zap.String("input", inputDir),
		zap.String("output", outputDir),
		zap.Duration("debounce", flags.debounce),
	)

	return w.Run(ctx)
}

// validateWatchDirs requires a directory input and an output directory
// outside it. Writing into the watched tree would retrigger the watcher.
func validateWatchDirs(inputDir, outputDir string) error {
	info, err := os.Stat(inputDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: watch needs a directory, got %s", ErrUsage, inputDir)
	}
	if outputDir == "" {
		return fmt.Errorf("%w: watch needs --output", ErrUsage)
	}

	in, err := filepath.Abs(inputDir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}
	if out == in || strings.HasPrefix(out, in+string(filepath.Separator)) {
		return fmt.Errorf("%w: --output must be outside the watched directory", ErrUsage)
	}
	return nil
}
