package manguide

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// CodeLineClassifier wraps comment and command lines of code elements in
// styling spans.
type CodeLineClassifier struct {
	Tag string // tag name of the code elements
}

// NewCodeLineClassifier creates a classifier for <code> elements.
func NewCodeLineClassifier() *CodeLineClassifier {
	return &CodeLineClassifier{Tag: DefaultCodeTag}
}

// Apply highlights every code element of the document. Elements whose content
// does not change are not written back.
func (c *CodeLineClassifier) Apply(ctx context.Context, doc Document) (HighlightStats, error) {
	var stats HighlightStats
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	elements, err := doc.FindAllByTag(ctx, c.Tag)
	if err != nil {
		return stats, fmt.Errorf("%w: finding <%s>: %v", ErrDocumentAccess, c.Tag, err)
	}

	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		content, err := el.InnerHTML()
		if err != nil {
			return stats, fmt.Errorf("%w: reading <%s>: %v", ErrDocumentAccess, c.Tag, err)
		}

		highlighted, blockStats := HighlightCode(content)
		stats.Add(blockStats)
		if highlighted == content {
			continue
		}
		if err := el.SetInnerHTML(highlighted); err != nil {
			return stats, fmt.Errorf("%w: writing <%s>: %v", ErrDocumentAccess, c.Tag, err)
		}
	}
	return stats, nil
}

// ClassifyLine classifies one line of serialized code content. Commands are
// recognized by the escaped form of ">" since content is HTML.
func ClassifyLine(line string) LineKind {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	switch {
	case strings.HasPrefix(trimmed, commentPrefix):
		return LineComment
	case strings.HasPrefix(trimmed, escapedCommandPrefix):
		return LineCommand
	default:
		return LinePlain
	}
}

// HighlightCode wraps comment and command lines of one code block and trims
// the surrounding whitespace of the result. Stats count a single block.
func HighlightCode(content string) (string, HighlightStats) {
	stats := HighlightStats{Blocks: 1}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		switch ClassifyLine(line) {
		case LineComment:
			lines[i] = wrapLine(ClassComment, line)
			stats.Comments++
		case LineCommand:
			lines[i] = wrapLine(ClassCommand, line)
			stats.Commands++
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), stats
}

func wrapLine(class, line string) string {
	return `<span class="` + class + `">` + line + `</span>`
}
