// Package dom provides a small mutable view over an HTML document.
//
// Documents are parsed with golang.org/x/net/html. Full documents (starting
// with <!DOCTYPE or <html) keep their structure; anything else is treated as a
// body fragment and rendered back without an <html><body> wrapper.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for document operations.
var (
	ErrParse  = errors.New("dom: failed to parse HTML")
	ErrRender = errors.New("dom: failed to render HTML")
)

// Document is a parsed HTML tree that can be queried and mutated in place.
// A Document is not safe for concurrent use.
type Document struct {
	root     *html.Node
	fragment bool
}

// Element is an element node of a Document.
type Element struct {
	node *html.Node
}

// Parse parses HTML content, detecting full documents versus fragments.
func Parse(content string) (*Document, error) {
	root, fragment, err := parseHTML(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &Document{root: root, fragment: fragment}, nil
}

// IsFragment reports whether the source was parsed as a body fragment.
func (d *Document) IsFragment() bool {
	return d.fragment
}

// ElementByID returns the first element in document order whose id attribute
// equals id, or nil.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}

	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Element{node: found}
}

// ElementsByTag returns every element with the given tag name in document order.
// Tag names are matched case-insensitively.
func (d *Document) ElementsByTag(tag string) []*Element {
	tag = strings.ToLower(tag)
	var elements []*Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			elements = append(elements, &Element{node: n})
		}
		return true
	})
	return elements
}

// Render serializes the document.
func (d *Document) Render() (string, error) {
	out, err := renderHTML(d.root, d.fragment)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return out, nil
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// InnerHTML serializes the element's children as a browser's innerHTML
// does: quotes in text stay literal and U+00A0 is written as &nbsp;.
func (e *Element) InnerHTML() (string, error) {
	var buf strings.Builder
	if err := serializeChildren(&buf, e.node); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the element's children with the parsed content.
// The content is parsed in the context of the element, as a browser would.
func (e *Element) SetInnerHTML(content string) error {
	nodes, err := html.ParseFragment(strings.NewReader(content), e.node)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Body context keeps the parser from synthesizing <html><head><body>.
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the tree. Fragments render their children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", `"`, "&quot;")
)

// serializeChildren writes the children of n using the HTML fragment
// serialization rules. Comments and doctypes go through html.Render.
func serializeChildren(buf *strings.Builder, n *html.Node) error {
	raw := isRawText(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if raw {
				buf.WriteString(c.Data)
			} else {
				buf.WriteString(textEscaper.Replace(c.Data))
			}
		case html.ElementNode:
			if err := serializeElement(buf, c); err != nil {
				return err
			}
		default:
			if err := html.Render(buf, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func serializeElement(buf *strings.Builder, n *html.Node) error {
	buf.WriteByte('<')
	buf.WriteString(n.Data)
	for _, a := range n.Attr {
		buf.WriteByte(' ')
		if a.Namespace != "" {
			buf.WriteString(a.Namespace)
			buf.WriteByte(':')
		}
		buf.WriteString(a.Key)
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(a.Val))
		buf.WriteByte('"')
	}
	buf.WriteByte('>')

	if n.Namespace == "" && isVoid(n.Data) {
		return nil
	}
	if err := serializeChildren(buf, n); err != nil {
		return err
	}
	buf.WriteString("</")
	buf.WriteString(n.Data)
	buf.WriteByte('>')
	return nil
}

// isVoid reports whether an HTML element has no end tag.
func isVoid(tag string) bool {
	switch tag {
	case "area", "base", "basefont", "bgsound", "br", "col", "embed", "frame", "hr",
		"img", "input", "keygen", "link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// walk visits n and its descendants depth-first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// isRawText reports whether the element's text children are serialized verbatim.
func isRawText(n *html.Node) bool {
	switch n.Data {
	case "iframe", "noembed", "noframes", "noscript", "plaintext", "script", "style", "xmp":
		return true
	}
	return false
}
