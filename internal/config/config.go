package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/alnah/go-manguide/internal/fileutil"
	"github.com/alnah/go-manguide/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength      = 200  // root crumb label
	MaxIdentifierLength = 100  // element id or tag name
	MaxPathLength       = 4096 // directories and base path
)

// appDirName is the directory searched under the user config dir.
const appDirName = "go-manguide"

// Config holds all configuration for page enhancement.
type Config struct {
	Title      string           `yaml:"title"`
	Breadcrumb BreadcrumbConfig `yaml:"breadcrumb"`
	Highlight  HighlightConfig  `yaml:"highlight"`
	Site       SiteConfig       `yaml:"site"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Browser    BrowserConfig    `yaml:"browser"`
}

// BreadcrumbConfig defines breadcrumb options.
type BreadcrumbConfig struct {
	Enabled     *bool  `yaml:"enabled"`     // nil = enabled
	ContainerID string `yaml:"containerId"` // empty = "breadcrumb"
}

// HighlightConfig defines code highlighting options.
type HighlightConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil = enabled
	Tag     string `yaml:"tag"`     // empty = "code"
}

// SiteConfig describes where pages are served from.
type SiteConfig struct {
	BasePath string `yaml:"basePath"` // URL path prefix of the input root, e.g. /docs/
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = in place)
}

// BrowserConfig defines live capture options.
type BrowserConfig struct {
	Timeout string `yaml:"timeout"` // Go duration, e.g. "30s" (empty = library default)
}

// BreadcrumbEnabled reports whether the breadcrumb step runs.
func (c *Config) BreadcrumbEnabled() bool {
	return c.Breadcrumb.Enabled == nil || *c.Breadcrumb.Enabled
}

// HighlightEnabled reports whether the highlight step runs.
func (c *Config) HighlightEnabled() bool {
	return c.Highlight.Enabled == nil || *c.Highlight.Enabled
}

// BrowserTimeout returns the parsed browser timeout, or 0 when unset.
// Validate guarantees the value parses.
func (c *Config) BrowserTimeout() time.Duration {
	if c.Browser.Timeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Browser.Timeout)
	return d
}

// Validate checks field lengths and formats.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("title", c.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateIdentifier("breadcrumb.containerId", c.Breadcrumb.ContainerID); err != nil {
		return err
	}
	if err := validateIdentifier("highlight.tag", c.Highlight.Tag); err != nil {
		return err
	}
	if err := validateFieldLength("site.basePath", c.Site.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if c.Browser.Timeout != "" {
		d, err := time.ParseDuration(c.Browser.Timeout)
		if err != nil {
			return fmt.Errorf("%w: browser.timeout: %v", ErrInvalidField, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: browser.timeout: must be positive, got %s", ErrInvalidField, c.Browser.Timeout)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateIdentifier checks an optional element id or tag name.
func validateIdentifier(fieldName, value string) error {
	if err := validateFieldLength(fieldName, value, MaxIdentifierLength); err != nil {
		return err
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %s: %q contains whitespace", ErrInvalidField, fieldName, value)
	}
	return nil
}

// DefaultConfig returns a configuration that leaves every library default
// in place.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFile(configPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-manguide/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	candidates := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		candidates = append(candidates, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			candidates = append(candidates, filepath.Join(userConfigDir, appDirName, name+ext))
		}
	}

	for _, path := range candidates {
		if fileutil.FileExists(path) {
			return path, nil
		}
	}
	return "", &NotFoundError{Tried: candidates}
}

// NotFoundError lists the locations searched for a config name.
// It matches ErrConfigNotFound with errors.Is.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return ErrConfigNotFound.Error() + ": tried " + strings.Join(e.Tried, ", ")
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }
