package manguide

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-manguide/internal/process"
)

// pageLoader opens pages in a browser. It abstracts go-rod so EnhanceURL can
// be tested without Chrome.
type pageLoader interface {
	Load(ctx context.Context, url string) (livePage, error)
	Close() error
}

// livePage is a loaded page whose DOM can be read and mutated.
type livePage interface {
	Document
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Compile-time interface checks
var (
	_ pageLoader = (*rodLoader)(nil)
	_ livePage   = (*rodDocument)(nil)
)

// Script bodies evaluated on an element; rod binds the element to this.
const (
	jsGetInnerHTML = `() => this.innerHTML`
	jsSetInnerHTML = `(content) => { this.innerHTML = content }`
)

// rodLoader implements pageLoader using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodLoader struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// newRodLoader creates a rodLoader with the given page load timeout.
func newRodLoader(timeout time.Duration) *rodLoader {
	return &rodLoader{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
// Callers must hold r.mu.
func (r *rodLoader) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// noSandbox reports whether Chrome must run without its sandbox.
func noSandbox() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("ROD_NO_SANDBOX") == "1" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// Load opens url in a new tab and waits for the load event.
// The deadline of ctx, when set, replaces the configured timeout.
func (r *rodLoader) Load(ctx context.Context, url string) (livePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if err := r.ensureBrowser(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	browser := r.browser
	r.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			_ = page.Close()
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}

	return &rodDocument{page: page}, nil
}

// Close releases browser resources and kills the browser process tree.
func (r *rodLoader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// rodDocument is a Document over a live browser page.
type rodDocument struct {
	page *rod.Page
}

func (d *rodDocument) FindByID(ctx context.Context, id string) (Element, bool, error) {
	ok, el, err := d.page.Context(ctx).Has(idSelector(id))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &rodElement{el: el}, true, nil
}

func (d *rodDocument) FindAllByTag(ctx context.Context, tag string) ([]Element, error) {
	found, err := d.page.Context(ctx).Elements(tag)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, len(found))
	for i, el := range found {
		elements[i] = &rodElement{el: el}
	}
	return elements, nil
}

// HTML returns the outer HTML of the document element. Chrome does not
// serialize the doctype there.
func (d *rodDocument) HTML(ctx context.Context) (string, error) {
	return d.page.Context(ctx).HTML()
}

func (d *rodDocument) Close() error {
	return d.page.Close()
}

// rodElement is an Element backed by a remote DOM node.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) InnerHTML() (string, error) {
	res, err := e.el.Eval(jsGetInnerHTML)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) SetInnerHTML(content string) error {
	_, err := e.el.Eval(jsSetInnerHTML, content)
	return err
}

// idSelector builds an attribute selector matching id exactly, which also
// works for ids that are not valid CSS identifiers.
func idSelector(id string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(id)
	return `[id="` + escaped + `"]`
}
