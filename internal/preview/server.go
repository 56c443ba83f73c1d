// preview serves workspace artifacts to the browser display and pushes
// change notifications over WebSocket.
package preview

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is sent over WebSocket to update connected displays.
type Message struct {
	Op       string `json:"op"`                 // "reload", "event"
	Artifact string `json:"artifact,omitempty"` // for "reload"
	Name     string `json:"name,omitempty"`     // for "event"
	Payload  any    `json:"payload,omitempty"`  // for "event"
}

// Server is one preview HTTP server. It is shared across documents within
// a session: retargeting swaps the served root and default document
// atomically instead of starting a second server.
type Server struct {
	mu         sync.Mutex
	root       string
	defaultDoc string
	noCache    bool

	listener net.Listener
	httpSrv  *http.Server

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
	upgrader  websocket.Upgrader
}

// Start listens on addr (port 0 picks a free one) and begins serving root.
// A taken port surfaces as an error naming the address; nothing is left
// running in that case.
func Start(addr string, root string, defaultDoc string, noCache bool) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("preview server could not listen on %s: %w", addr, err)
	}

	s := &Server{
		root:       root,
		defaultDoc: defaultDoc,
		noCache:    noCache,
		listener:   listener,
		clients:    make(map[*websocket.Conn]bool),
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/", s.handleFile)
	s.httpSrv = &http.Server{Handler: mux}

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("preview server error: %v", err)
		}
	}()

	return s, nil
}

// URL returns the address the display should open.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String() + "/"
}

// Retarget atomically switches the served root and default document.
func (s *Server) Retarget(root string, defaultDoc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.defaultDoc = defaultDoc
}

// Reload tells all connected displays to refetch an artifact.
func (s *Server) Reload(artifact string) {
	s.broadcast(Message{Op: "reload", Artifact: artifact})
}

// Emit delivers a named event with a JSON payload to all displays.
func (s *Server) Emit(name string, payload any) {
	s.broadcast(Message{Op: "event", Name: name, Payload: payload})
}

// ClientCount returns the number of connected displays.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Stop closes all display connections and releases the listener.
func (s *Server) Stop() error {
	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	return s.httpSrv.Close()
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	root := s.root
	defaultDoc := s.defaultDoc
	noCache := s.noCache
	s.mu.Unlock()

	name := filepath.Clean(r.URL.Path)
	if name == "/" || name == "." {
		name = defaultDoc
	}

	if noCache {
		w.Header().Set("Cache-Control", "no-store")
	}
	http.ServeFile(w, r, filepath.Join(root, name))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade error: %v", err)
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	// keep connection open until the display goes away
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
}

// broadcast marshals and sends a message to all clients, dropping the
// ones that are gone.
func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Broadcast marshal error: %v", err)
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Broadcast error: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
