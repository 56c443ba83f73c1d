package block

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// StructuralLocator finds diagram blocks through the markdown AST.
// It picks the fenced code block tagged with the diagram language that
// contains the cursor line, or failing that the nearest one opening above it.
type StructuralLocator struct {
	tag string
	md  goldmark.Markdown
}

func NewStructuralLocator(tag string) *StructuralLocator {
	return &StructuralLocator{
		tag: tag,
		md:  goldmark.New(),
	}
}

func (l *StructuralLocator) Locate(source []byte, cursorLine int) (string, error) {
	root := l.md.Parser().Parse(text.NewReader(source))
	starts := lineStarts(source)

	bestLine := 0
	var bestText string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if string(fenced.Language(source)) != l.tag || fenced.Info == nil {
			return ast.WalkContinue, nil
		}
		openLine := lineAt(starts, fenced.Info.Segment.Start)
		if openLine > cursorLine || openLine <= bestLine {
			return ast.WalkContinue, nil
		}
		// The parser is more permissive than the fence syntax: it accepts
		// indented fences, trailing words in the info string, and blocks
		// left open at EOF. Hold it to the same rules as the line scan.
		if !OpensFence(lineContent(source, starts, openLine), l.tag) {
			return ast.WalkContinue, nil
		}
		if !ClosesFence(lineContent(source, starts, closingLine(fenced, starts, openLine))) {
			return ast.WalkContinue, nil
		}
		bestLine = openLine
		bestText = innerText(fenced, source)
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	if bestLine == 0 {
		return "", ErrNoBlock
	}
	return bestText, nil
}

// innerText reassembles the block content byte-for-byte.
func innerText(fenced *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fenced.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// lineStarts returns the byte offset of every line start.
func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// closingLine returns the line on which the block's closing fence must sit:
// the line after the last content line. For a block the parser closed at EOF
// that line is the unfinished content line itself, which never passes
// ClosesFence.
func closingLine(fenced *ast.FencedCodeBlock, starts []int, openLine int) int {
	lines := fenced.Lines()
	if lines.Len() == 0 {
		return openLine + 1
	}
	return lineAt(starts, lines.At(lines.Len()-1).Stop)
}

// lineContent returns the text of a 1-based line without its newline,
// or "" when the line is out of range.
func lineContent(source []byte, starts []int, line int) string {
	if line < 1 || line > len(starts) {
		return ""
	}
	start := starts[line-1]
	end := len(source)
	if line < len(starts) {
		end = starts[line] - 1
	}
	return string(source[start:end])
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(starts []int, offset int) int {
	line := 1
	for i, start := range starts {
		if start > offset {
			break
		}
		line = i + 1
	}
	return line
}
