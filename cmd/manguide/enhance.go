package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/config"
	"github.com/alnah/go-manguide/internal/hints"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// runEnhanceCmd parses flags and runs the enhance command.
func runEnhanceCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseEnhanceFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runEnhance(ctx, positional, flags, env)
}

// runEnhance enhances every page under the input path.
func runEnhance(ctx context.Context, positional []string, flags *enhanceFlags, env *Environment) error {
	s, err := resolveSettings(flags.common.config, &flags.page, flags.basePath, flags.workers)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, s.cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, s.cfg)

	pages, err := discoverPages(inputPath, outputDir, s.cfg.Site.BasePath)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPages, inputPath)
	}

	enh, err := manguide.NewEnhancer(s.options(env.Logger)...)
	if err != nil {
		return err
	}
	defer enh.Close()

	env.Logger.Debug("enhancing pages",
		zap.String("input", inputPath),
		zap.String("output", outputDir),
		zap.Int("pages", len(pages)),
		zap.Int("workers", s.workers),
		zap.Bool("dry_run", flags.dryRun),
	)

	results := enhanceBatch(ctx, enh, pages, s.workers, flags.dryRun)
	out := outputMode{quiet: flags.common.quiet, verbose: flags.common.verbose, dryRun: flags.dryRun}

	failed := printResults(results, out, env)
	if s.cfg.BreadcrumbEnabled() {
		warnMissingContainers(results, s.containerID(), out, env)
	}
	if failed > 0 {
		return fmt.Errorf("%d page(s) failed", failed)
	}
	return nil
}

// resolveInputPath returns the positional input or the configured default.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir returns the flag value or the configured default.
// An empty result means in-place enhancement.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// outputMode controls result printing.
type outputMode struct {
	quiet   bool
	verbose bool
	dryRun  bool
}

// ResultSummary holds the count of succeeded and failed pages.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed pages.
func countResults(results []EnhanceResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs page results and returns the failure count.
func printResults(results []EnhanceResult, mode outputMode, env *Environment) int {
	summary := countResults(results)

	verb := "Enhanced"
	if mode.dryRun {
		verb = "Would enhance"
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Page.InputPath, r.Err)
			continue
		}

		if mode.quiet {
			continue
		}

		if mode.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (path %s, %d crumbs, %d comments, %d commands, %v)\n",
				r.Page.InputPath, r.Page.OutputPath, r.Page.PagePath, r.Crumbs,
				r.Highlight.Comments, r.Highlight.Commands, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "%s %s\n", verb, r.Page.OutputPath)
		}
	}

	if !mode.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// warnMissingContainers reports pages that had no breadcrumb container.
// A missing container is not an error, but usually means a wrong id.
func warnMissingContainers(results []EnhanceResult, containerID string, mode outputMode, env *Environment) {
	if mode.quiet {
		return
	}

	missing := 0
	for _, r := range results {
		if r.Err == nil && !r.BreadcrumbApplied {
			missing++
			env.Logger.Debug("breadcrumb container not found",
				zap.String("page", r.Page.InputPath),
				zap.String("container_id", containerID),
			)
		}
	}
	if missing > 0 {
		fmt.Fprintf(env.Stderr, "warning: %d page(s) without a breadcrumb container%s\n",
			missing, hints.ForMissingContainer(containerID))
	}
}
