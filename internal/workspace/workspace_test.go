package workspace_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/selimacerbas/markdown-preview.nvim/internal/workspace"
)

func newWorkspace(t *testing.T, origin string) *workspace.Workspace {
	t.Helper()
	w, err := workspace.New(t.TempDir(), origin, "index.html", "content.md")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func TestWorkspacesAreDisjoint(t *testing.T) {
	base := t.TempDir()
	a, err := workspace.New(base, "file:///a.md", "index.html", "content.md")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := workspace.New(base, "file:///b.md", "index.html", "content.md")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Dir() == b.Dir() {
		t.Errorf("different documents share workspace %q", a.Dir())
	}

	// same origin maps to the same directory
	a2, err := workspace.New(base, "file:///a.md", "index.html", "content.md")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Dir() != a2.Dir() {
		t.Errorf("same document got different workspaces %q vs %q", a.Dir(), a2.Dir())
	}
}

func TestWriteContentIdempotence(t *testing.T) {
	w := newWorkspace(t, "file:///a.md")

	written, err := w.WriteContent("# hello")
	if err != nil {
		t.Fatalf("WriteContent() error = %v", err)
	}
	if !written {
		t.Fatal("first write reported as no-op")
	}

	written, err = w.WriteContent("# hello")
	if err != nil {
		t.Fatalf("WriteContent() error = %v", err)
	}
	if written {
		t.Error("unchanged content was rewritten")
	}

	written, err = w.WriteContent("# changed")
	if err != nil {
		t.Fatalf("WriteContent() error = %v", err)
	}
	if !written {
		t.Error("changed content was not written")
	}

	data, err := os.ReadFile(filepath.Join(w.Dir(), "content.md"))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != "# changed" {
		t.Errorf("artifact = %q", data)
	}
}

func TestWriteContentEmptyString(t *testing.T) {
	w := newWorkspace(t, "file:///a.md")

	written, err := w.WriteContent("")
	if err != nil {
		t.Fatalf("WriteContent() error = %v", err)
	}
	if !written {
		t.Error("first write of empty content must still happen")
	}
}

func TestWriteContentFailureDoesNotCache(t *testing.T) {
	w := newWorkspace(t, "file:///a.md")

	// make the directory unwritable so the write fails
	if err := os.Chmod(w.Dir(), 0500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(w.Dir(), 0700)

	if _, err := w.WriteContent("# hello"); err == nil {
		t.Skip("running as a user unaffected by directory permissions")
	}

	os.Chmod(w.Dir(), 0700)

	// retry must not be treated as a no-op
	written, err := w.WriteContent("# hello")
	if err != nil {
		t.Fatalf("WriteContent() retry error = %v", err)
	}
	if !written {
		t.Error("failed write polluted the content cache")
	}
}

func TestWriteShell(t *testing.T) {
	w := newWorkspace(t, "file:///a.md")
	path := filepath.Join(w.Dir(), "index.html")

	if err := w.WriteShell(false); err != nil {
		t.Fatalf("WriteShell() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading shell: %v", err)
	}
	if !strings.Contains(string(data), `content="content.md"`) {
		t.Error("shell does not reference the content artifact")
	}

	// without force an existing shell is kept
	if err := os.WriteFile(path, []byte("edited"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteShell(false); err != nil {
		t.Fatalf("WriteShell() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "edited" {
		t.Error("WriteShell(false) overwrote an existing shell")
	}

	// with force the template wins
	if err := w.WriteShell(true); err != nil {
		t.Fatalf("WriteShell() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) == "edited" {
		t.Error("WriteShell(true) kept a stale shell")
	}
}

func TestRemove(t *testing.T) {
	w := newWorkspace(t, "file:///a.md")
	if err := w.WriteShell(false); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(w.Dir()); !os.IsNotExist(err) {
		t.Error("workspace directory still exists after Remove")
	}
}
