package preview_test

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/selimacerbas/markdown-preview.nvim/internal/preview"
)

func startServer(t *testing.T, root string) *preview.Server {
	t.Helper()
	s, err := preview.Start("127.0.0.1:0", root, "index.html", true)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func writeFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestServeArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<html>shell</html>")
	writeFile(t, root, "content.md", "# hello")

	s := startServer(t, root)

	status, body := get(t, s.URL())
	if status != http.StatusOK || body != "<html>shell</html>" {
		t.Errorf("GET / = %d %q, want the default document", status, body)
	}

	status, body = get(t, s.URL()+"content.md")
	if status != http.StatusOK || body != "# hello" {
		t.Errorf("GET /content.md = %d %q", status, body)
	}

	resp, err := http.Get(s.URL() + "content.md")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}

func TestRetarget(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "index.html", "first shell")
	writeFile(t, second, "index.html", "second shell")

	s := startServer(t, first)
	if _, body := get(t, s.URL()); body != "first shell" {
		t.Fatalf("initial body = %q", body)
	}

	s.Retarget(second, "index.html")
	if _, body := get(t, s.URL()); body != "second shell" {
		t.Errorf("after Retarget body = %q", body)
	}
}

func dialWS(t *testing.T, s *preview.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(s.URL(), "http") + "ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReloadBroadcast(t *testing.T) {
	s := startServer(t, t.TempDir())
	conn := dialWS(t, s)

	// connection registration is asynchronous
	waitForClients(t, s, 1)

	s.Reload("content.md")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg preview.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if msg.Op != "reload" || msg.Artifact != "content.md" {
		t.Errorf("got %+v, want reload of content.md", msg)
	}
}

func TestEmitNamedEvent(t *testing.T) {
	s := startServer(t, t.TempDir())
	conn := dialWS(t, s)
	waitForClients(t, s, 1)

	s.Emit("scroll", map[string]string{"headingId": "getting-started"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg preview.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if msg.Op != "event" || msg.Name != "scroll" {
		t.Errorf("got %+v, want scroll event", msg)
	}
	payload, ok := msg.Payload.(map[string]any)
	if !ok || payload["headingId"] != "getting-started" {
		t.Errorf("payload = %#v", msg.Payload)
	}
}

func TestClientCount(t *testing.T) {
	s := startServer(t, t.TempDir())
	if got := s.ClientCount(); got != 0 {
		t.Fatalf("ClientCount() = %d before any connection", got)
	}

	conn := dialWS(t, s)
	waitForClients(t, s, 1)

	conn.Close()
	waitForClients(t, s, 0)
}

func TestStartPortConflict(t *testing.T) {
	s := startServer(t, t.TempDir())
	addr := strings.TrimSuffix(strings.TrimPrefix(s.URL(), "http://"), "/")

	_, err := preview.Start(addr, t.TempDir(), "index.html", true)
	if err == nil {
		t.Fatal("expected error for taken port")
	}
	if !strings.Contains(err.Error(), addr) {
		t.Errorf("error %q does not name the attempted address", err)
	}
}

func waitForClients(t *testing.T, s *preview.Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ClientCount() = %d, want %d", s.ClientCount(), want)
}
