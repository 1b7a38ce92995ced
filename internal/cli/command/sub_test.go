package command

import (
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/yndnr/zpipe/internal/cli/console"
	"github.com/yndnr/zpipe/internal/recordlog"
	"github.com/yndnr/zpipe/internal/transport"
	"github.com/yndnr/zpipe/internal/transport/transporttest"
)

func subArgs(extra ...string) []string {
	return append([]string{"--mode", "sub", "--endpoint", "tcp://127.0.0.1:5555"}, extra...)
}

func queueMessages(s *transporttest.Socket) {
	s.Queue([]byte("news"), []byte("hello"))
	s.Queue([]byte("only-one-frame"))
	s.Queue([]byte("bin"), []byte{0xde, 0xad, 0xbe, 0xef})
}

func TestSubscriber_Console(t *testing.T) {
	h := newHarness(t, "")
	h.prepare = queueMessages

	if err := h.run(subArgs()...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := strings.Join([]string{
		"SUB connected to tcp://127.0.0.1:5555",
		"Subscribed to all topics",
		"Waiting for messages...",
		"[*] news => hello",
		"[*] bin => deadbeef",
	}, "\n") + "\n"
	if got := h.stdout.String(); got != want {
		t.Errorf("stdout =\n%s\nwant\n%s", got, want)
	}

	if got := h.socket(t).Filters(); !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("filters = %q, want all topics", got)
	}
	if !strings.Contains(h.stderr.String(), "skipping malformed message") {
		t.Errorf("stderr should log the malformed message:\n%s", h.stderr.String())
	}
}

func TestSubscriber_Topic(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run(subArgs("--topic", "news", "--bind")...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "SUB bound to tcp://127.0.0.1:5555\n") ||
		!strings.Contains(out, "Subscribed to topic: news\n") {
		t.Errorf("stdout = %q", out)
	}
	if got := h.socket(t).Filters(); !reflect.DeepEqual(got, []string{"news"}) {
		t.Errorf("filters = %q", got)
	}
}

func TestSubscriber_SocketOptions(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run(subArgs("--buf", "1024", "--hwm", "50")...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	sock := h.socket(t)
	if v, _ := sock.GetOption(transport.OptionRecvBuffer); v != 1024 {
		t.Errorf("rcvbuf = %d, want 1024", v)
	}
	if v, _ := sock.GetOption(transport.OptionRecvHWM); v != 50 {
		t.Errorf("rcvhwm = %d, want 50", v)
	}
}

func TestSubscriber_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")

	h := newHarness(t, "")
	h.prepare = queueMessages
	if err := h.run(subArgs("--file", out)...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "[1] news => hello\n[2] bin => deadbeef\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
	if strings.Contains(h.stdout.String(), "=>") {
		t.Error("messages should not be printed to the console in file mode")
	}
}

func TestSubscriber_OverwriteDeclined(t *testing.T) {
	for _, answer := range []string{"n\n", "\n", "", "maybe\n"} {
		t.Run(strings.TrimSpace(answer), func(t *testing.T) {
			out := writeFile(t, "out.txt", "keep")

			h := newHarness(t, answer)
			h.prepare = queueMessages
			if err := h.run(subArgs("--file", out)...); err != nil {
				t.Fatalf("Run() error = %v, declining must exit cleanly", err)
			}

			stdout := h.stdout.String()
			if !strings.Contains(stdout, console.OverwritePrompt(out)) {
				t.Errorf("stdout missing prompt:\n%s", stdout)
			}
			if !strings.HasSuffix(stdout, console.AbortMessage+"\n") {
				t.Errorf("stdout should end with the abort message:\n%s", stdout)
			}

			data, _ := os.ReadFile(out)
			if string(data) != "keep" {
				t.Errorf("file = %q, must be untouched", data)
			}
			if len(h.sockets) != 0 {
				t.Error("no socket may be opened when the user declines")
			}
		})
	}
}

func TestSubscriber_OverwriteDeclinedStartsNothing(t *testing.T) {
	// Hold the metrics port: binding it again would fail the run.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	out := writeFile(t, "out.txt", "keep")
	h := newHarness(t, "n\n")
	if err := h.run(subArgs("--file", out, "--metrics-addr", l.Addr().String())...); err != nil {
		t.Fatalf("Run() error = %v, declining must exit before any listener starts", err)
	}
	if strings.Contains(h.stderr.String(), "metrics server listening") {
		t.Errorf("metrics server started before the overwrite prompt:\n%s", h.stderr.String())
	}
	if len(h.sockets) != 0 {
		t.Error("no socket may be opened when the user declines")
	}
}

func TestSubscriber_OverwriteAccepted(t *testing.T) {
	for _, answer := range []string{"y\n", "YES\n", "  Yes  \n"} {
		t.Run(strings.TrimSpace(answer), func(t *testing.T) {
			out := writeFile(t, "out.txt", "old contents that are longer\n")

			h := newHarness(t, answer)
			h.prepare = queueMessages
			if err := h.run(subArgs("--file", out)...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			data, _ := os.ReadFile(out)
			if string(data) != "[1] news => hello\n[2] bin => deadbeef\n" {
				t.Errorf("file = %q", data)
			}
		})
	}
}

func TestSubscriber_Force(t *testing.T) {
	out := writeFile(t, "out.txt", "old\n")

	h := newHarness(t, "")
	h.prepare = queueMessages
	if err := h.run(subArgs("--file", out, "--force")...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(h.stdout.String(), "Overwrite?") {
		t.Error("--force must skip the prompt")
	}
	data, _ := os.ReadFile(out)
	if !strings.HasPrefix(string(data), "[1] news => hello") {
		t.Errorf("file = %q", data)
	}
}

func TestSubscriber_Record(t *testing.T) {
	rec := filepath.Join(t.TempDir(), "capture.bin")

	h := newHarness(t, "")
	h.prepare = queueMessages
	if err := h.run(subArgs("--record", rec)...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	f, err := os.Open(rec)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := recordlog.ReadAll(recordlog.NewBinaryLog(f))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("captured %d records, want 2", len(records))
	}
	if string(records[0].Payload) != "hello" || !reflect.DeepEqual(records[1].Payload, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("payloads = %q, %x", records[0].Payload, records[1].Payload)
	}
}

func TestSubscriber_RecordRequiresSubMode(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run(pubArgs("--topic", "t", "--record", "x.bin")...); err == nil {
		t.Fatal("expected --record to be rejected in pub mode")
	}
}

func TestSubscriber_MetricsServer(t *testing.T) {
	h := newHarness(t, "")
	h.prepare = queueMessages
	if err := h.run(subArgs("--metrics-addr", "127.0.0.1:0")...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(h.stderr.String(), "metrics server listening") {
		t.Errorf("stderr = %s", h.stderr.String())
	}
}

func TestSubscriber_JSONLogs(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run(subArgs("--log-format", "json")...); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(h.stderr.String(), `"msg":"socket ready"`) {
		t.Errorf("stderr = %s", h.stderr.String())
	}
	if !strings.Contains(h.stderr.String(), `"session":"`) {
		t.Error("log lines should carry the session id")
	}
}
