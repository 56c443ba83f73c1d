package server

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/selimacerbas/markdown-preview.nvim/internal/config"
	"github.com/selimacerbas/markdown-preview.nvim/internal/workspace"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	cfg, err := config.Load(params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	log.Printf("Config: %+v", cfg)

	stateDir, err := workspace.StateDir(serverName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.config = cfg
	s.stateDir = stateDir
	s.mu.Unlock()

	// Full sync: every refresh recomputes from the complete snapshot.
	syncKind := protocol.TextDocumentSyncKindFull

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{
			cmdOpen,
			cmdRefresh,
			cmdStop,
			cmdCursorMoved,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Println("Client initialized.")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	if active := s.dropSession(); active != nil {
		return active.Close()
	}
	return nil
}
