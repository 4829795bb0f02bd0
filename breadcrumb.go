package manguide

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// BreadcrumbBuilder renders a navigation trail derived from the page path
// into the breadcrumb container.
type BreadcrumbBuilder struct {
	Title       string // root crumb label
	ContainerID string // id of the container element
}

// NewBreadcrumbBuilder creates a builder with the default title and container id.
func NewBreadcrumbBuilder() *BreadcrumbBuilder {
	return &BreadcrumbBuilder{
		Title:       DefaultTitle,
		ContainerID: DefaultContainerID,
	}
}

// Apply replaces the container content with the rendered trail.
// A page without the container is left untouched and applied is false.
func (b *BreadcrumbBuilder) Apply(ctx context.Context, doc Document, pagePath string) (applied bool, crumbs []Crumb, err error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}

	container, ok, err := doc.FindByID(ctx, b.ContainerID)
	if err != nil {
		return false, nil, fmt.Errorf("%w: finding #%s: %v", ErrDocumentAccess, b.ContainerID, err)
	}
	if !ok {
		return false, nil, nil
	}

	crumbs = BuildCrumbs(pagePath, b.Title)
	if err := container.SetInnerHTML(RenderBreadcrumb(crumbs)); err != nil {
		return false, nil, fmt.Errorf("%w: writing breadcrumb: %v", ErrDocumentAccess, err)
	}
	return true, crumbs, nil
}

// BuildCrumbs derives the trail for pagePath. The root crumb links to the
// directory of the page; each underscore-separated segment of the page name
// adds a crumb linking to the accumulated prefix.
//
//	BuildCrumbs("/docs/a_b.html", "Guide")
//	// [{Guide /docs/} {a a.html} {b a_b.html}]
//
// A path ending in "/" yields the root crumb only.
func BuildCrumbs(pagePath, title string) []Crumb {
	slash := strings.LastIndex(pagePath, breadcrumbSeparator)
	page := pagePath[slash+1:]

	crumbs := []Crumb{{Name: title, URL: pagePath[:slash+1]}}
	if page == "" {
		return crumbs
	}

	page = strings.TrimSuffix(page, pageExtension)
	var url string
	for i, segment := range strings.Split(page, segmentSeparator) {
		if i == 0 {
			url = segment
		} else {
			url += segmentSeparator + segment
		}
		crumbs = append(crumbs, Crumb{Name: segment, URL: url + pageExtension})
	}
	return crumbs
}

// RenderBreadcrumb renders crumbs as links separated by "/", ending in a
// plain label for the current page. Returns "" for an empty trail.
func RenderBreadcrumb(crumbs []Crumb) string {
	if len(crumbs) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, c := range crumbs[:len(crumbs)-1] {
		fmt.Fprintf(&sb, `<a href="%s" class="%s">%s</a><span class="%s">%s</span>`,
			html.EscapeString(c.URL), ClassCrumb, html.EscapeString(c.Name),
			ClassSeparator, breadcrumbSeparator)
	}

	current := stripPageExtension(crumbs[len(crumbs)-1].Name)
	fmt.Fprintf(&sb, `<span class="%s">%s</span>`, ClassCurrent, html.EscapeString(current))
	return sb.String()
}

// stripPageExtension removes every ".html" from name, including ones formed
// by the removal itself ("x.h.htmltml" becomes "x").
func stripPageExtension(name string) string {
	for strings.Contains(name, pageExtension) {
		name = strings.ReplaceAll(name, pageExtension, "")
	}
	return name
}
