// mermaid shells out to the mermaid CLI to pre-render diagram sources.
package mermaid

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// ErrUnavailable means the renderer binary is not on the execution path.
// It is a capability problem, distinct from a single diagram failing.
var ErrUnavailable = errors.New("mermaid renderer unavailable")

// Renderer turns diagram source into rendered markup.
type Renderer interface {
	// Available reports whether rendering can be attempted at all.
	Available() bool
	// Render converts one diagram source into markup (SVG).
	Render(source string) (string, error)
}

// CLI invokes an external renderer process, diagram source on stdin,
// markup on stdout. The path probe happens once at construction; a
// missing binary degrades the whole session to pass-through.
type CLI struct {
	path      string
	args      []string
	available bool
}

func NewCLI(command string, args []string) *CLI {
	path, err := exec.LookPath(command)
	if err != nil {
		log.Printf("mermaid: %q not found in PATH, pre-rendering disabled for this session", command)
		return &CLI{available: false}
	}
	return &CLI{
		path:      path,
		args:      args,
		available: true,
	}
}

func (c *CLI) Available() bool {
	return c.available
}

func (c *CLI) Render(source string) (string, error) {
	if !c.available {
		return "", ErrUnavailable
	}

	cmd := exec.Command(c.path, c.args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return "", fmt.Errorf("render failed: %s", diagnostic)
	}
	return stdout.String(), nil
}
