package manguide

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Enhancer adds the breadcrumb trail and code highlighting to pages.
// Create with NewEnhancer, use Enhance or EnhanceURL, and Close when done.
// Enhance is safe for concurrent use; EnhanceURL shares one browser.
type Enhancer struct {
	cfg        enhancerConfig
	logger     *zap.Logger
	breadcrumb *BreadcrumbBuilder
	classifier *CodeLineClassifier
	loader     pageLoader
}

// NewEnhancer creates an Enhancer with default configuration.
// Use options to customize behavior (e.g., WithTitle, WithContainerID).
// Returns an error if an option value is invalid. The browser used by
// EnhanceURL is only launched on first use.
func NewEnhancer(opts ...Option) (*Enhancer, error) {
	e := &Enhancer{
		cfg: enhancerConfig{
			title:       DefaultTitle,
			containerID: DefaultContainerID,
			codeTag:     DefaultCodeTag,
			timeout:     defaultTimeout,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.validate(); err != nil {
		return nil, err
	}

	e.breadcrumb = &BreadcrumbBuilder{Title: e.cfg.title, ContainerID: e.cfg.containerID}
	e.classifier = &CodeLineClassifier{Tag: e.cfg.codeTag}

	// Tests inject a fake loader
	if e.loader == nil {
		e.loader = newRodLoader(e.cfg.timeout)
	}
	return e, nil
}

// InitManPage runs the breadcrumb builder then the code classifier over doc.
// pagePath plays the role of the browser location path.
func (e *Enhancer) InitManPage(ctx context.Context, doc Document, pagePath string) (*Result, error) {
	res := &Result{}

	if !e.cfg.disableBreadcrumb {
		applied, crumbs, err := e.breadcrumb.Apply(ctx, doc, pagePath)
		if err != nil {
			return nil, fmt.Errorf("building breadcrumb: %w", err)
		}
		res.BreadcrumbApplied = applied
		res.Crumbs = crumbs
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if !e.cfg.disableHighlight {
		stats, err := e.classifier.Apply(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("highlighting code: %w", err)
		}
		res.Highlight = stats
	}

	e.logger.Debug("page enhanced",
		zap.String("path", pagePath),
		zap.Bool("breadcrumb", res.BreadcrumbApplied),
		zap.Int("crumbs", len(res.Crumbs)),
		zap.Int("code_blocks", res.Highlight.Blocks),
		zap.Int("comments", res.Highlight.Comments),
		zap.Int("commands", res.Highlight.Commands),
	)
	return res, nil
}

// Enhance parses static HTML, enhances it and returns the rendered page.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Enhancer) Enhance(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if strings.TrimSpace(input.HTML) == "" {
		return nil, ErrEmptyHTML
	}

	doc, err := ParseDocument(input.HTML)
	if err != nil {
		return nil, err
	}

	res, err := e.InitManPage(ctx, doc, input.Path)
	if err != nil {
		return nil, err
	}

	out, err := doc.Render()
	if err != nil {
		return nil, err
	}
	res.HTML = []byte(out)
	return res, nil
}

// EnhanceURL loads target in headless Chrome, enhances the live DOM and
// captures the resulting HTML. target is an http(s) or file URL, or a local
// file path. The page path is the path component of the resolved URL.
func (e *Enhancer) EnhanceURL(ctx context.Context, target string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	pageURL, pagePath, err := resolveTarget(target)
	if err != nil {
		return nil, err
	}

	page, err := e.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	res, err := e.InitManPage(ctx, page, pagePath)
	if err != nil {
		return nil, err
	}

	out, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: capturing page: %v", ErrDocumentAccess, err)
	}
	res.HTML = []byte(out)
	return res, nil
}

// Close releases resources (headless Chrome browser).
func (e *Enhancer) Close() error {
	if e.loader != nil {
		return e.loader.Close()
	}
	return nil
}

// resolveTarget turns a URL or local path into a loadable URL and the page
// path seen by the breadcrumb builder. The page path stays percent-encoded,
// as location.pathname is in a browser.
func resolveTarget(target string) (pageURL, pagePath string, err error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}

	if u, perr := url.Parse(target); perr == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "http", "https":
			if u.Host == "" {
				return "", "", fmt.Errorf("%w: %q has no host", ErrInvalidTarget, target)
			}
		case "file":
		default:
			return "", "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidTarget, u.Scheme)
		}
		path := u.EscapedPath()
		if path == "" {
			path = "/"
		}
		return u.String(), path, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	path := filepath.ToSlash(abs)
	if !strings.HasPrefix(path, "/") {
		// Windows drive paths
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), u.EscapedPath(), nil
}
