package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	defer SetLevel("info")

	tests := []struct {
		name    string
		cfg     Config
		json    bool
		wantErr bool
	}{
		{name: "zero config", cfg: Config{}},
		{name: "text format", cfg: Config{Level: "info", Format: "text"}},
		{name: "json format", cfg: Config{Level: "debug", Format: "JSON"}, json: true},
		{name: "unknown format", cfg: Config{Format: "console"}, wantErr: true},
		{name: "unknown level", cfg: Config{Level: "trace"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf

			l, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("hello")

			isJSON := json.Valid(bytes.TrimSpace(buf.Bytes()))
			if isJSON != tt.json {
				t.Errorf("json output = %v, want %v (%q)", isJSON, tt.json, buf.String())
			}
		})
	}
}

func TestNew_SessionID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Format: "json", Output: &buf, SessionID: "01ARZ3NDEKTSV4RRFFQ69G5FAV"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.With("mode", "sub").Info("tagged")

	entry := decodeEntry(t, &buf)
	if entry[SessionKey] != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("session = %v", entry[SessionKey])
	}
	if entry["mode"] != "sub" {
		t.Errorf("mode = %v, want sub", entry["mode"])
	}
}

func TestNew_NoSessionID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("untagged")

	if _, ok := decodeEntry(t, &buf)[SessionKey]; ok {
		t.Error("session attr present without session id")
	}
}

func TestNew_RedactsSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("connect", "password", "hunter2")

	if strings.Contains(buf.String(), "hunter2") {
		t.Errorf("secret leaked: %q", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	defer SetLevel("info")

	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() > 0 {
		t.Error("Debug/Info messages should be filtered when level is warn")
	}

	l.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("Warn message should be logged")
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	var buf bytes.Buffer
	l, err := New(Config{Level: "error", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("dropped")
	if buf.Len() > 0 {
		t.Fatal("info logged at error level")
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug): %v", err)
	}
	if got := GetLevel(); got != "debug" {
		t.Errorf("GetLevel() = %q, want debug", got)
	}
	l.Debug("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("debug message not logged after SetLevel(debug)")
	}

	if err := SetLevel("verbose"); err == nil {
		t.Error("SetLevel(verbose) succeeded")
	}
	if got := GetLevel(); got != "debug" {
		t.Errorf("GetLevel() after rejected SetLevel = %q, want debug", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"bogus", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == b {
		t.Error("session ids should be unique")
	}
	if _, err := ulid.Parse(a); err != nil {
		t.Errorf("session id %q is not a ULID: %v", a, err)
	}
}

func TestDefaultLogger(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	var buf bytes.Buffer
	l, _ := New(Config{Output: &buf})
	prev := Default()
	SetDefault(l)
	defer SetDefault(prev)

	Default().Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("Default() not routed to the installed logger: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.With("k", "v").Info("still nothing")
}
