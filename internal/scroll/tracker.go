// scroll maps cursor movement to heading anchors for the preview display.
package scroll

import (
	"strings"
	"sync"

	"github.com/selimacerbas/markdown-preview.nvim/internal/document"
	"github.com/selimacerbas/markdown-preview.nvim/internal/slug"
)

// Tracker remembers the last emitted anchor per document and reports
// only transitions, so repeated moves under the same heading stay quiet.
// An empty anchor means no heading above the cursor.
type Tracker struct {
	mu      sync.Mutex
	anchors map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{
		anchors: make(map[string]string),
	}
}

// Move computes the anchor for the cursor position and reports whether
// it changed since the last move in this document.
func (t *Tracker) Move(doc *document.Document, cursorLine int) (string, bool) {
	anchor := ""
	if heading, ok := headingAbove(doc.Lines(), cursorLine); ok {
		anchor = slug.Make(heading)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.anchors[doc.URI] == anchor {
		return anchor, false
	}
	t.anchors[doc.URI] = anchor
	return anchor, true
}

// Forget drops the cached anchor for a document.
func (t *Tracker) Forget(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.anchors, uri)
}

// headingAbove finds the text of the nearest heading at or above the
// 1-based cursor line.
func headingAbove(lines []string, cursorLine int) (string, bool) {
	start := cursorLine - 1
	if start > len(lines)-1 {
		start = len(lines) - 1
	}
	for i := start; i >= 0; i-- {
		if text, ok := headingText(lines[i]); ok {
			return text, true
		}
	}
	return "", false
}

// headingText recognizes a leading run of 1-6 '#' followed by
// whitespace and text.
func headingText(line string) (string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < 1 || level > 6 || level == len(line) {
		return "", false
	}
	if line[level] != ' ' && line[level] != '\t' {
		return "", false
	}
	text := strings.TrimSpace(line[level:])
	if text == "" {
		return "", false
	}
	return text, true
}
