package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// defaultDebounce groups bursts of writes from generators into one pass.
const defaultDebounce = 200 * time.Millisecond

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds flags that shape the enhancement of each page.
type pageFlags struct {
	title        string
	containerID  string
	codeTag      string
	timeout      string
	noBreadcrumb bool
	noHighlight  bool
}

// enhanceFlags holds all flags for the enhance command.
type enhanceFlags struct {
	common   commonFlags
	page     pageFlags
	output   string
	workers  int
	basePath string
	dryRun   bool
}

// captureFlags holds all flags for the capture command.
type captureFlags struct {
	common  commonFlags
	page    pageFlags
	output  string
	workers int
}

// watchFlags holds all flags for the watch command.
type watchFlags struct {
	common   commonFlags
	page     pageFlags
	output   string
	workers  int
	basePath string
	debounce time.Duration
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-page details and debug logs")
}

// addPageFlags adds enhancement flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.title, "title", "", "root crumb label")
	fs.StringVar(&f.containerID, "container-id", "", "id of the breadcrumb container element")
	fs.StringVar(&f.codeTag, "code-tag", "", "tag name of code blocks to highlight")
	fs.BoolVar(&f.noBreadcrumb, "no-breadcrumb", false, "skip the breadcrumb trail")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "skip code highlighting")
}

// newFlagSet creates a FlagSet whose usage goes to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseFlagSet parses args and marks failures as usage errors.
// flag.ErrHelp is returned unchanged so callers can exit cleanly.
func parseFlagSet(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// parseEnhanceFlags parses enhance command flags and returns positional args.
func parseEnhanceFlags(args []string, w io.Writer) (*enhanceFlags, []string, error) {
	f := &enhanceFlags{}
	fs := newFlagSet("enhance", w, printEnhanceUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: in place)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.basePath, "base-path", "", "site path prefix of the input root (e.g. /docs/)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "report without writing")
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	positional, err := parseFlagSet(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

// parseCaptureFlags parses capture command flags and returns the targets.
func parseCaptureFlags(args []string, w io.Writer) (*captureFlags, []string, error) {
	f := &captureFlags{}
	fs := newFlagSet("capture", w, printCaptureUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output directory, or - for stdout")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.StringVarP(&f.page.timeout, "timeout", "t", "", "page load timeout (e.g., 30s, 2m)")
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	positional, err := parseFlagSet(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, w io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := newFlagSet("watch", w, printWatchUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output directory (required, outside the input)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.basePath, "base-path", "", "site path prefix of the input root (e.g. /docs/)")
	fs.DurationVar(&f.debounce, "debounce", defaultDebounce, "quiet period before re-enhancing")
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	positional, err := parseFlagSet(fs, args)
	if err != nil {
		return nil, nil, err
	}
	if f.debounce <= 0 {
		return nil, nil, fmt.Errorf("%w: --debounce must be positive", ErrUsage)
	}
	return f, positional, nil
}
