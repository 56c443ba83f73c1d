// document holds the editor-owned text snapshots the preview pipeline reads.
package document

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Kind classifies how a document is turned into preview content.
type Kind int

const (
	// KindProse is the primary document format; the whole text is previewed.
	KindProse Kind = iota
	// KindDiagram is a standalone diagram file; the whole text is one diagram.
	KindDiagram
	// KindOther is everything else; only the block under the cursor is previewed.
	KindOther
)

// Document is a read-only snapshot of an open editor buffer.
type Document struct {
	URI        string
	Path       string
	LanguageID string
	Text       string
}

// diagram file suffixes recognized independently of the declared language.
var diagramExtensions = map[string]bool{
	".mmd":     true,
	".mermaid": true,
}

func New(uri string, languageID string, text string) *Document {
	path, err := PathFromURI(uri)
	if err != nil {
		path = uri
	}
	return &Document{
		URI:        uri,
		Path:       path,
		LanguageID: languageID,
		Text:       text,
	}
}

// Kind dispatches on the declared language first, then on the file suffix.
func (d *Document) Kind() Kind {
	if d.LanguageID == "markdown" {
		return KindProse
	}
	if diagramExtensions[strings.ToLower(filepath.Ext(d.Path))] {
		return KindDiagram
	}
	return KindOther
}

// Lines splits the snapshot into lines without touching their content.
func (d *Document) Lines() []string {
	return strings.Split(d.Text, "\n")
}

// PathFromURI extracts the filesystem path from a file:// URI.
func PathFromURI(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse uri %q: %w", uri, err)
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", parsed.Scheme)
	}
	return parsed.Path, nil
}
