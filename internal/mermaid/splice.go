package mermaid

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/selimacerbas/markdown-preview.nvim/internal/block"
)

// Splicer replaces diagram fences with pre-rendered markup, one region
// at a time. A failed render leaves its fence untouched so the display
// can fall back to client-side rendering for that region only; all text
// outside fences passes through byte-for-byte.
type Splicer struct {
	tag      string
	renderer Renderer
}

func NewSplicer(tag string, renderer Renderer) *Splicer {
	return &Splicer{
		tag:      tag,
		renderer: renderer,
	}
}

func (s *Splicer) Splice(text string) string {
	if s.renderer == nil || !s.renderer.Available() {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	seq := 0

	for i := 0; i < len(lines); {
		if !block.OpensFence(lines[i], s.tag) {
			out = append(out, lines[i])
			i++
			continue
		}

		end := -1
		for j := i + 1; j < len(lines); j++ {
			if block.ClosesFence(lines[j]) {
				end = j
				break
			}
		}
		if end == -1 {
			// unterminated fence, keep as-is
			out = append(out, lines[i])
			i++
			continue
		}

		source := strings.Join(lines[i+1:end], "\n")
		rendered, err := s.renderer.Render(source)
		if err != nil {
			log.Printf("mermaid: leaving fence intact: %v", err)
			out = append(out, lines[i:end+1]...)
		} else {
			out = append(out, embed(seq, source, rendered))
			seq++
		}
		i = end + 1
	}

	return strings.Join(out, "\n")
}

// embed wraps rendered markup so the display can identify the diagram,
// recover its source, and skip client-side rendering for it.
func embed(id int, source string, rendered string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(source))
	return fmt.Sprintf(
		`<div class="mermaid-prerendered" id="mermaid-%d" data-source="%s" data-processed="true">%s</div>`,
		id, encoded, strings.TrimRight(rendered, "\n"),
	)
}
