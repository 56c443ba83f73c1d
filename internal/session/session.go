// session owns the state of one preview run: the push server, the
// per-document workspaces, and the caches tying them together. It is
// constructed on preview start and torn down on stop; nothing lives in
// package-level state.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/selimacerbas/markdown-preview.nvim/internal/block"
	"github.com/selimacerbas/markdown-preview.nvim/internal/config"
	"github.com/selimacerbas/markdown-preview.nvim/internal/document"
	"github.com/selimacerbas/markdown-preview.nvim/internal/mermaid"
	"github.com/selimacerbas/markdown-preview.nvim/internal/preview"
	"github.com/selimacerbas/markdown-preview.nvim/internal/resolve"
	"github.com/selimacerbas/markdown-preview.nvim/internal/scheduler"
	"github.com/selimacerbas/markdown-preview.nvim/internal/scroll"
	"github.com/selimacerbas/markdown-preview.nvim/internal/workspace"
)

// ErrNotStarted means a preview operation arrived with no active preview.
var ErrNotStarted = errors.New("no active preview")

type Session struct {
	cfg      config.Config
	stateDir string

	docs        *document.Manager
	resolver    *resolve.Resolver
	tracker     *scroll.Tracker
	coordinator *scheduler.Coordinator

	mu         sync.Mutex
	server     *preview.Server
	workspaces map[string]*workspace.Workspace
	cursors    map[string]int
	active     string
}

// New wires the pipeline for one session. The mermaid capability probe
// happens here, once; a missing tool degrades splicing to pass-through
// until the session is reconfigured.
func New(cfg config.Config, docs *document.Manager, stateDir string) *Session {
	locator := block.Chain{
		block.NewStructuralLocator(cfg.FenceTag),
		block.NewScanningLocator(cfg.FenceTag),
	}

	var splicer resolve.Splicer
	if cfg.Mermaid.Prerender {
		renderer := mermaid.NewCLI(cfg.Mermaid.Command, cfg.Mermaid.Args)
		if renderer.Available() {
			splicer = mermaid.NewSplicer(cfg.FenceTag, renderer)
		}
	}

	s := &Session{
		cfg:        cfg,
		stateDir:   stateDir,
		docs:       docs,
		resolver:   resolve.New(cfg.FenceTag, locator, splicer),
		tracker:    scroll.NewTracker(),
		workspaces: make(map[string]*workspace.Workspace),
		cursors:    make(map[string]int),
	}
	s.coordinator = scheduler.New(cfg.Debounce(), s.refreshActive)
	return s
}

// Open starts (or retargets) the preview for a document. It is
// idempotent: opening while already serving simply points the server at
// the new document's workspace. Failures surface to the caller and leave
// any previous target untouched.
func (s *Session) Open(uri string) error {
	s.mu.Lock()
	ws, err := s.ensureWorkspaceLocked(uri)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	server := s.server
	s.mu.Unlock()

	if err := ws.WriteShell(s.cfg.RefreshShell); err != nil {
		return err
	}

	if server == nil {
		addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
		server, err = preview.Start(addr, ws.Dir(), s.cfg.Shell, s.cfg.NoCache)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.server = server
		s.mu.Unlock()
	} else {
		server.Retarget(ws.Dir(), s.cfg.Shell)
	}

	s.mu.Lock()
	s.active = uri
	s.mu.Unlock()

	return s.coordinator.Flush()
}

// Changed schedules a debounced refresh for the active document.
func (s *Session) Changed(uri string) {
	s.mu.Lock()
	active := s.active == uri && s.server != nil
	s.mu.Unlock()
	if active {
		s.coordinator.Trigger()
	}
}

// Refresh resolves and writes immediately, surfacing failures.
func (s *Session) Refresh() error {
	s.mu.Lock()
	started := s.active != "" && s.server != nil
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	return s.coordinator.Flush()
}

// CursorMoved records the cursor position, pushes a scroll signal when
// the nearest heading changed, and, for documents previewed block-wise,
// schedules a content refresh since the relevant block may have moved.
// Scroll feedback is not debounced.
func (s *Session) CursorMoved(uri string, line int) {
	s.mu.Lock()
	s.cursors[uri] = line
	active := s.active == uri
	server := s.server
	s.mu.Unlock()

	if !active || server == nil {
		return
	}
	doc, err := s.docs.Get(uri)
	if err != nil {
		return
	}

	if anchor, changed := s.tracker.Move(doc, line); changed {
		server.Emit("scroll", map[string]string{"headingId": anchor})
	}

	if doc.Kind() == document.KindOther {
		s.coordinator.Trigger()
	}
}

// Closed drops the per-document state of a document the editor closed.
// The workspace stays: the display may still be showing it.
func (s *Session) Closed(uri string) {
	s.mu.Lock()
	delete(s.cursors, uri)
	s.mu.Unlock()
	s.tracker.Forget(uri)
}

// URL returns the preview address, or "" when not started.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return ""
	}
	return s.server.URL()
}

// Active returns the URI currently previewed, or "".
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ClientCount returns the number of connected displays.
func (s *Session) ClientCount() int {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return 0
	}
	return server.ClientCount()
}

// Close stops the server and clears every workspace and cache. Closing
// an already closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	server := s.server
	workspaces := s.workspaces
	s.server = nil
	s.workspaces = make(map[string]*workspace.Workspace)
	s.cursors = make(map[string]int)
	s.active = ""
	s.mu.Unlock()

	s.coordinator.Cancel()

	for uri, ws := range workspaces {
		s.tracker.Forget(uri)
		if err := ws.Remove(); err != nil {
			return err
		}
	}
	if server != nil {
		return server.Stop()
	}
	return nil
}

// refreshActive runs the resolve, compare, write, notify pipeline for the
// active document.
func (s *Session) refreshActive() error {
	s.mu.Lock()
	uri := s.active
	ws := s.workspaces[uri]
	server := s.server
	cursor, ok := s.cursors[uri]
	s.mu.Unlock()

	if uri == "" || ws == nil || server == nil {
		return ErrNotStarted
	}
	if !ok {
		cursor = 1
	}

	doc, err := s.docs.Get(uri)
	if err != nil {
		return err
	}
	content, err := s.resolver.Resolve(doc, cursor)
	if err != nil {
		return err
	}

	written, err := ws.WriteContent(content)
	if err != nil {
		return err
	}
	if written {
		server.Reload(ws.ContentName())
	}
	return nil
}

func (s *Session) ensureWorkspaceLocked(uri string) (*workspace.Workspace, error) {
	if ws, ok := s.workspaces[uri]; ok {
		return ws, nil
	}
	ws, err := workspace.New(s.stateDir, uri, s.cfg.Shell, s.cfg.Content)
	if err != nil {
		return nil, err
	}
	s.workspaces[uri] = ws
	return ws, nil
}
