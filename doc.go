// Package manguide enhances generated CLI reference pages with a breadcrumb
// trail and lightweight code highlighting.
//
// # Quick Start
//
// Create an enhancer and run it over an HTML page:
//
//	enh, err := manguide.NewEnhancer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer enh.Close()
//
//	result, err := enh.Enhance(ctx, manguide.Input{
//	    HTML: page,
//	    Path: "/docs/sdpctl_appliance_list.html",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.html", result.HTML, 0644)
//
// # Breadcrumb
//
// The page path plays the role of the browser location. Its last segment is
// split on underscores and every prefix becomes a crumb:
//
//	/docs/a_b_c.html -> Quick Start Guide / a / b / c
//
// The trail replaces the content of the element with id "breadcrumb". Pages
// without that element are left untouched.
//
// # Code Highlighting
//
// Every <code> element is split into lines. Lines starting with "#" are
// wrapped in <span class="code-comment">, lines starting with ">" (serialized
// as "&gt;") in <span class="code-command">.
//
// # Document Backends
//
// Both operations run against the Document interface. Enhance parses static
// HTML with golang.org/x/net/html; EnhanceURL loads the page in headless
// Chrome (go-rod) and mutates the live DOM before capturing it.
//
// # Configuration
//
// Use functional options to customize the enhancer:
//
//	enh, err := manguide.NewEnhancer(
//	    manguide.WithTitle("sdpctl reference"),
//	    manguide.WithContainerID("crumbs"),
//	    manguide.WithTimeout(time.Minute),
//	)
//
// # Browser Requirements
//
// EnhanceURL requires Chrome/Chromium. The go-rod library downloads a managed
// Chromium on first run. Set ROD_BROWSER_BIN to use a specific binary and
// ROD_NO_SANDBOX=1 in containers.
package manguide
