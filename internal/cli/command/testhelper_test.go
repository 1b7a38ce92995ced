package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/recordlog"
	"github.com/yndnr/zpipe/internal/transport"
	"github.com/yndnr/zpipe/internal/transport/transporttest"
)

// testTime has a 0xff byte in its little-endian encoding, so logs
// written with it always sniff as binary.
var testTime = time.UnixMilli(0xffff)

// harness runs the app against in-memory sockets and buffers.
type harness struct {
	app    *cli.App
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	mu      sync.Mutex
	sockets []*transporttest.Socket

	// prepare, when set, is called on every socket before it is returned.
	prepare func(*transporttest.Socket)
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = App(WithSocketFactory(func(_ context.Context, _ string, role transport.Role) (transport.Socket, error) {
		sock := transporttest.New(role)
		if h.prepare != nil {
			h.prepare(sock)
		}
		h.mu.Lock()
		h.sockets = append(h.sockets, sock)
		h.mu.Unlock()
		return sock, nil
	}))
	h.app.Reader = strings.NewReader(stdin)
	h.app.Writer = h.stdout
	h.app.ErrWriter = h.stderr
	return h
}

func (h *harness) run(args ...string) error {
	return h.app.Run(append([]string{"zpipe"}, args...))
}

func (h *harness) socket(t *testing.T) *transporttest.Socket {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sockets) != 1 {
		t.Fatalf("created %d sockets, want 1", len(h.sockets))
	}
	return h.sockets[0]
}

// writeBinaryLog writes payloads as a binary record-log in a temp dir.
func writeBinaryLog(t *testing.T, payloads ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.bin")
	w, err := recordlog.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, p := range payloads {
		if err := w.Append([]byte(p), testTime); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return path
}

// writeFile writes content to name in a temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func sentPayloads(sock *transporttest.Socket) []string {
	var out []string
	for _, m := range sock.Sent() {
		out = append(out, string(m.Payload))
	}
	return out
}
