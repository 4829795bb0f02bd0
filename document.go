package manguide

import (
	"context"
	"fmt"

	"github.com/alnah/go-manguide/internal/dom"
)

// Element is a mutable element of a Document.
type Element interface {
	InnerHTML() (string, error)
	SetInnerHTML(content string) error
}

// Document is the view of a page the enhancement steps run against.
// Implementations exist for static HTML and for a live browser page.
type Document interface {
	// FindByID returns the first element with the given id. The boolean is
	// false when no element matches.
	FindByID(ctx context.Context, id string) (Element, bool, error)

	// FindAllByTag returns every element with the given tag in document order.
	FindAllByTag(ctx context.Context, tag string) ([]Element, error)
}

// Compile-time interface implementation checks.
var (
	_ Document = (*StaticDocument)(nil)
	_ Element  = (*dom.Element)(nil)
	_ Document = (*rodDocument)(nil)
	_ Element  = (*rodElement)(nil)
)

// ParseDocument parses static HTML into a Document. Use Render on the
// returned value to serialize the mutated page.
func ParseDocument(content string) (*StaticDocument, error) {
	doc, err := dom.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseHTML, err)
	}
	return &StaticDocument{doc: doc}, nil
}

// StaticDocument is a Document backed by parsed HTML.
// It is not safe for concurrent use.
type StaticDocument struct {
	doc *dom.Document
}

// Render serializes the document. Fragments render without a wrapper.
func (d *StaticDocument) Render() (string, error) {
	out, err := d.doc.Render()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderHTML, err)
	}
	return out, nil
}

func (d *StaticDocument) FindByID(ctx context.Context, id string) (Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	el := d.doc.ElementByID(id)
	if el == nil {
		return nil, false, nil
	}
	return el, true, nil
}

func (d *StaticDocument) FindAllByTag(ctx context.Context, tag string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := d.doc.ElementsByTag(tag)
	elements := make([]Element, len(found))
	for i, el := range found {
		elements[i] = el
	}
	return elements, nil
}
