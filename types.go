package manguide

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

// Defaults for the document contract.
const (
	DefaultTitle       = "Quick Start Guide"
	DefaultContainerID = "breadcrumb"
	DefaultCodeTag     = "code"
)

// CSS classes written into enhanced pages. Stylesheets target these names,
// including the historical "seperator" spelling.
const (
	ClassCrumb     = "bc-crumb"
	ClassSeparator = "bc-seperator"
	ClassCurrent   = "bc-current"
	ClassComment   = "code-comment"
	ClassCommand   = "code-command"
)

// Length limits for configurable identifiers.
const (
	MaxTitleLength       = 200
	MaxIdentifierLength  = 100
	defaultTimeout       = 30 * time.Second
	pageExtension        = ".html"
	breadcrumbSeparator  = "/"
	segmentSeparator     = "_"
	commentPrefix        = "#"
	escapedCommandPrefix = "&gt;"
)

// Crumb is one navigational unit of the breadcrumb trail.
type Crumb struct {
	Name string // display label
	URL  string // link target
}

// LineKind classifies a single line of an inline code block.
type LineKind string

// Line kinds.
const (
	LinePlain   LineKind = "plain"
	LineComment LineKind = "comment"
	LineCommand LineKind = "command"
)

// HighlightStats counts what the code classifier touched.
type HighlightStats struct {
	Blocks   int // code elements visited
	Comments int // lines wrapped as comments
	Commands int // lines wrapped as commands
}

// Add accumulates other into s.
func (s *HighlightStats) Add(other HighlightStats) {
	s.Blocks += other.Blocks
	s.Comments += other.Comments
	s.Commands += other.Commands
}

// Input contains static enhancement parameters.
type Input struct {
	HTML string // page content, full document or fragment (required)
	Path string // page path as a browser would report it, e.g. /docs/a_b.html
}

// Result holds the outcome of an enhancement.
type Result struct {
	HTML              []byte         // enhanced page
	Crumbs            []Crumb        // trail derived from the page path
	BreadcrumbApplied bool           // false when the page has no breadcrumb container
	Highlight         HighlightStats // code classifier counts
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// enhancerConfig holds internal configuration for Enhancer.
type enhancerConfig struct {
	title             string
	containerID       string
	codeTag           string
	timeout           time.Duration
	disableBreadcrumb bool
	disableHighlight  bool
}

// WithTitle sets the label of the root crumb.
func WithTitle(title string) Option {
	return func(e *Enhancer) {
		e.cfg.title = title
	}
}

// WithContainerID sets the id of the element that receives the breadcrumb.
func WithContainerID(id string) Option {
	return func(e *Enhancer) {
		e.cfg.containerID = id
	}
}

// WithCodeTag sets the tag name of the elements that get highlighted.
func WithCodeTag(tag string) Option {
	return func(e *Enhancer) {
		e.cfg.codeTag = tag
	}
}

// WithTimeout sets the page load timeout used by EnhanceURL.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("manguide: WithTimeout duration must be positive")
	}
	return func(e *Enhancer) {
		e.cfg.timeout = d
	}
}

// WithLogger sets the logger used for debug output. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Enhancer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithoutBreadcrumb disables the breadcrumb step.
func WithoutBreadcrumb() Option {
	return func(e *Enhancer) {
		e.cfg.disableBreadcrumb = true
	}
}

// WithoutHighlight disables the code highlighting step.
func WithoutHighlight() Option {
	return func(e *Enhancer) {
		e.cfg.disableHighlight = true
	}
}

// validate checks option values after they are applied.
func (c *enhancerConfig) validate() error {
	if strings.TrimSpace(c.title) == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidTitle)
	}
	if len(c.title) > MaxTitleLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrInvalidTitle, len(c.title), MaxTitleLength)
	}
	if err := validateIdentifier(c.containerID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContainerID, err)
	}
	if err := validateIdentifier(c.codeTag); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCodeTag, err)
	}
	return nil
}

// validateIdentifier rejects empty, oversized, or whitespace-bearing names.
func validateIdentifier(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	if len(s) > MaxIdentifierLength {
		return fmt.Errorf("%d chars (max %d)", len(s), MaxIdentifierLength)
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%q contains whitespace", s)
	}
	return nil
}
