package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	s.docs.Open(
		params.TextDocument.URI,
		params.TextDocument.LanguageID,
		params.TextDocument.Text,
	)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			if _, err := s.docs.Update(uri, change.Text); err != nil {
				return err
			}
		case protocol.TextDocumentContentChangeEvent:
			// full sync is negotiated; a rangeless event carries the
			// whole document too
			if change.Range != nil {
				return fmt.Errorf("unexpected incremental change for %s", uri)
			}
			if _, err := s.docs.Update(uri, change.Text); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}

	if active := s.currentSession(); active != nil {
		active.Changed(uri)
	}
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	if params.Text != nil {
		if _, err := s.docs.Update(uri, *params.Text); err != nil {
			return err
		}
	}
	if active := s.currentSession(); active != nil {
		active.Changed(uri)
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.docs.Release(params.TextDocument.URI)
	if active := s.currentSession(); active != nil {
		active.Closed(params.TextDocument.URI)
	}
	return nil
}
