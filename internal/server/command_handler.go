package server

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	cmdOpen        = "markdownPreview.open"
	cmdRefresh     = "markdownPreview.refresh"
	cmdStop        = "markdownPreview.stop"
	cmdCursorMoved = "markdownPreview.cursorMoved"
)

type documentArgs struct {
	URI  string `json:"uri"`
	Line int    `json:"line"`
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	switch params.Command {
	case cmdOpen:
		return nil, s.openPreview(context, params.Arguments)
	case cmdRefresh:
		return nil, s.refreshPreview(context)
	case cmdStop:
		return nil, s.stopPreview()
	case cmdCursorMoved:
		return nil, s.cursorMoved(params.Arguments)
	}
	return nil, nil
}

// openPreview starts the preview for the given document, or retargets a
// running one. The resulting URL is handed back to the editor to open.
func (s *Server) openPreview(context *glsp.Context, arguments []any) error {
	var args documentArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return err
	}

	active := s.ensureSession()
	if err := active.Open(args.URI); err != nil {
		showError(context, fmt.Sprintf("Preview failed: %v", err))
		return err
	}

	log.Printf("Previewing %s at %s", args.URI, active.URL())
	context.Notify(
		"window/showDocument",
		protocol.ShowDocumentParams{
			URI:      protocol.URI(active.URL()),
			External: &protocol.True,
		},
	)
	return nil
}

func (s *Server) refreshPreview(context *glsp.Context) error {
	active := s.currentSession()
	if active == nil {
		showError(context, "No preview to refresh.")
		return nil
	}
	if err := active.Refresh(); err != nil {
		showError(context, fmt.Sprintf("Refresh failed: %v", err))
		return err
	}
	return nil
}

// stopPreview is a no-op when nothing is running.
func (s *Server) stopPreview() error {
	if active := s.dropSession(); active != nil {
		return active.Close()
	}
	return nil
}

func (s *Server) cursorMoved(arguments []any) error {
	var args documentArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return err
	}
	if active := s.currentSession(); active != nil {
		active.CursorMoved(args.URI, args.Line)
	}
	return nil
}

// decodeArgs extracts the single JSON object command argument.
func decodeArgs(arguments []any, target any) error {
	if len(arguments) != 1 {
		return fmt.Errorf("expected one command argument, got %d", len(arguments))
	}
	data, err := json.Marshal(arguments[0])
	if err != nil {
		return fmt.Errorf("failed to marshal command argument: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal command argument: %w", err)
	}
	return nil
}

func showError(context *glsp.Context, message string) {
	context.Notify(
		"window/showMessage",
		protocol.ShowMessageParams{
			Type:    protocol.MessageTypeError,
			Message: message,
		},
	)
}
