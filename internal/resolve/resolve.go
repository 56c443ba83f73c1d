// resolve decides what text the preview should currently show for a document.
package resolve

import (
	"errors"
	"fmt"

	"github.com/selimacerbas/markdown-preview.nvim/internal/block"
	"github.com/selimacerbas/markdown-preview.nvim/internal/document"
)

// ErrNoContent means nothing resolvable exists for the document and cursor.
var ErrNoContent = errors.New("no previewable content")

// Splicer optionally replaces diagram fences with pre-rendered markup.
// It never fails; at worst it returns its input unchanged.
type Splicer interface {
	Splice(text string) string
}

// Resolver maps a document snapshot and cursor position to preview content.
type Resolver struct {
	tag     string
	locator block.Locator
	splicer Splicer
}

// New creates a Resolver. splicer may be nil when pre-rendering is disabled.
func New(tag string, locator block.Locator, splicer Splicer) *Resolver {
	return &Resolver{
		tag:     tag,
		locator: locator,
		splicer: splicer,
	}
}

// Resolve dispatches on the document kind:
// prose previews verbatim, standalone diagrams are wrapped in a single
// fence pair, and anything else previews the block under the cursor.
func (r *Resolver) Resolve(doc *document.Document, cursorLine int) (string, error) {
	var content string
	switch doc.Kind() {
	case document.KindProse:
		content = doc.Text
	case document.KindDiagram:
		content = block.Wrap(r.tag, doc.Text)
	default:
		inner, err := r.locator.Locate([]byte(doc.Text), cursorLine)
		if err != nil {
			return "", fmt.Errorf("%w: %s line %d", ErrNoContent, doc.URI, cursorLine)
		}
		content = block.Wrap(r.tag, inner)
	}

	if r.splicer != nil {
		content = r.splicer.Splice(content)
	}
	return content, nil
}
