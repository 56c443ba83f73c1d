// workspace manages the per-document directory served to the preview display.
package workspace

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed template/index.html
var shellTemplate string

// Workspace is the on-disk area for one previewed document. It holds the
// static shell artifact and the content artifact, and remembers the last
// content written so unchanged resolutions skip the write entirely.
type Workspace struct {
	dir         string
	shellName   string
	contentName string

	mu          sync.Mutex
	lastContent string
	hasContent  bool
}

// New derives the workspace directory from a stable hash of the document
// origin, so different documents never collide, and creates it.
func New(baseDir string, origin string, shellName string, contentName string) (*Workspace, error) {
	sum := sha256.Sum256([]byte(origin))
	dir := filepath.Join(baseDir, hex.EncodeToString(sum[:])[:16])
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return &Workspace{
		dir:         dir,
		shellName:   shellName,
		contentName: contentName,
	}, nil
}

func (w *Workspace) Dir() string         { return w.dir }
func (w *Workspace) ShellName() string   { return w.shellName }
func (w *Workspace) ContentName() string { return w.contentName }

// WriteShell materializes the packaged shell template. When force is
// false an existing shell is left alone.
func (w *Workspace) WriteShell(force bool) error {
	path := filepath.Join(w.dir, w.shellName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	shell := strings.ReplaceAll(shellTemplate, "__CONTENT__", w.contentName)
	if err := os.WriteFile(path, []byte(shell), 0644); err != nil {
		return fmt.Errorf("failed to write shell artifact: %w", err)
	}
	return nil
}

// WriteContent rewrites the content artifact and reports whether a write
// happened. Identical content is a no-op. The cache is only updated after
// a successful write, so a failed write is retried rather than skipped.
func (w *Workspace) WriteContent(content string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hasContent && w.lastContent == content {
		return false, nil
	}
	path := filepath.Join(w.dir, w.contentName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write content artifact: %w", err)
	}
	w.lastContent = content
	w.hasContent = true
	return true, nil
}

// Remove deletes the workspace directory and everything in it.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.dir)
}

// StateDir returns the base directory for preview workspaces, under the
// XDG state home.
func StateDir(appName string) (string, error) {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgStateHome = filepath.Join(homeDir, ".local", "state")
	}

	appStateDir := filepath.Join(xdgStateHome, appName)
	if err := os.MkdirAll(appStateDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return appStateDir, nil
}
