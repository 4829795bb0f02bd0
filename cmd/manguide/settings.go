package main

import (
	"errors"
	"fmt"
	"time"

	manguide "github.com/alnah/go-manguide"
	"github.com/alnah/go-manguide/internal/config"
	"go.uber.org/zap"
)

// Sentinel errors for settings resolution.
var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// settings is the merged result of flags, environment and config file.
type settings struct {
	cfg     *config.Config
	workers int
}

// resolveSettings loads the config and applies overrides in precedence
// order: flags > env vars > config file > defaults.
func resolveSettings(configName string, page *pageFlags, basePath string, workers int) (*settings, error) {
	if err := validateWorkers(workers); err != nil {
		return nil, err
	}

	env := loadEnvConfig()
	if configName == "" {
		configName = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if configName != "" {
		var err error
		cfg, err = config.LoadConfig(configName)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(env, cfg)

	if err := mergePageFlags(page, cfg); err != nil {
		return nil, err
	}
	if basePath != "" {
		cfg.Site.BasePath = basePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if workers == 0 {
		workers = env.Workers
	}

	return &settings{
		cfg:     cfg,
		workers: manguide.ResolvePoolSize(workers),
	}, nil
}

// mergePageFlags merges page flags into cfg. CLI values override config values.
func mergePageFlags(f *pageFlags, cfg *config.Config) error {
	if f.title != "" {
		cfg.Title = f.title
	}
	if f.containerID != "" {
		cfg.Breadcrumb.ContainerID = f.containerID
	}
	if f.codeTag != "" {
		cfg.Highlight.Tag = f.codeTag
	}
	if f.noBreadcrumb {
		cfg.Breadcrumb.Enabled = boolPtr(false)
	}
	if f.noHighlight {
		cfg.Highlight.Enabled = boolPtr(false)
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q (use a positive duration like 30s or 2m)", ErrInvalidTimeout, f.timeout)
		}
		cfg.Browser.Timeout = f.timeout
	}
	return nil
}

// options converts the merged config into enhancer options.
func (s *settings) options(logger *zap.Logger) []manguide.Option {
	opts := []manguide.Option{manguide.WithLogger(logger)}

	if s.cfg.Title != "" {
		opts = append(opts, manguide.WithTitle(s.cfg.Title))
	}
	if s.cfg.Breadcrumb.ContainerID != "" {
		opts = append(opts, manguide.WithContainerID(s.cfg.Breadcrumb.ContainerID))
	}
	if s.cfg.Highlight.Tag != "" {
		opts = append(opts, manguide.WithCodeTag(s.cfg.Highlight.Tag))
	}
	if d := s.cfg.BrowserTimeout(); d > 0 {
		opts = append(opts, manguide.WithTimeout(d))
	}
	if !s.cfg.BreadcrumbEnabled() {
		opts = append(opts, manguide.WithoutBreadcrumb())
	}
	if !s.cfg.HighlightEnabled() {
		opts = append(opts, manguide.WithoutHighlight())
	}
	return opts
}

// containerID returns the effective breadcrumb container id.
func (s *settings) containerID() string {
	if s.cfg.Breadcrumb.ContainerID != "" {
		return s.cfg.Breadcrumb.ContainerID
	}
	return manguide.DefaultContainerID
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > manguide.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, manguide.MaxPoolSize)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
