// server exposes the preview pipeline to the editor over LSP.
package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/selimacerbas/markdown-preview.nvim/internal/config"
	"github.com/selimacerbas/markdown-preview.nvim/internal/document"
	"github.com/selimacerbas/markdown-preview.nvim/internal/session"
)

const serverName = "markdown-preview"

type Server struct {
	handler *protocol.Handler
	docs    *document.Manager

	mu       sync.Mutex
	config   config.Config
	stateDir string
	session  *session.Session
}

func NewServer() (*glspserver.Server, error) {
	s := &Server{
		docs: document.NewManager(),
	}
	s.handler = &protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		TextDocumentDidOpen:     s.textDocumentDidOpen,
		TextDocumentDidChange:   s.textDocumentDidChange,
		TextDocumentDidSave:     s.textDocumentDidSave,
		TextDocumentDidClose:    s.textDocumentDidClose,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
		Shutdown:                s.shutdown,
	}

	return glspserver.NewServer(s.handler, serverName, false), nil
}

// currentSession returns the active session, or nil.
func (s *Server) currentSession() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// ensureSession builds the session on first use, so the mermaid probe
// and workspace setup happen with the initialize-time configuration.
func (s *Server) ensureSession() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		s.session = session.New(s.config, s.docs, s.stateDir)
	}
	return s.session
}

// dropSession detaches and returns the session, if any.
func (s *Server) dropSession() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.session
	s.session = nil
	return active
}
