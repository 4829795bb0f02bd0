package main

import (
	"errors"
	"os"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/config"
	"github.com/alnah/go-manguide/internal/hints"
)

// Exit codes for the manguide CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All pages enhanced
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, manguide.ErrBrowserConnect) ||
		errors.Is(err, manguide.ErrPageCreate) ||
		errors.Is(err, manguide.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoPages) ||
		errors.Is(err, ErrReadPage) ||
		errors.Is(err, ErrWritePage) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, manguide.ErrInvalidTitle) ||
		errors.Is(err, manguide.ErrInvalidContainerID) ||
		errors.Is(err, manguide.ErrInvalidCodeTag) ||
		errors.Is(err, manguide.ErrInvalidTarget) ||
		errors.Is(err, manguide.ErrEmptyHTML) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidLogLevel) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, manguide.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, manguide.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searchedPaths(err))
	case errors.Is(err, ErrNoPages):
		return hints.ForNoPages()
	case errors.Is(err, ErrOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}

// searchedPaths extracts the config locations tried from a not-found error.
func searchedPaths(err error) []string {
	var nf *config.NotFoundError
	if errors.As(err, &nf) {
		return nf.Tried
	}
	return nil
}
