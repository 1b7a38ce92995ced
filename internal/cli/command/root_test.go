package command

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/core/domain"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "zpipe" {
		t.Errorf("Name = %q, want zpipe", app.Name)
	}
	if app.Action == nil {
		t.Error("root action should be set")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"inspect", "convert", "version"} {
		if !commandNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}
}

func TestApp_Flags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range rootFlags() {
		flagNames[f.Names()[0]] = true
	}
	for name := range flagKeys {
		if !flagNames[name] {
			t.Errorf("flag %q has a config key but no flag", name)
		}
	}
	if !flagNames["config"] {
		t.Error("missing config flag")
	}
}

func TestFlagsMap_OnlyExplicit(t *testing.T) {
	var got map[string]any
	app := App()
	app.Action = func(c *cli.Context) error {
		got = flagsMap(c)
		return nil
	}

	err := app.Run([]string{"zpipe", "--topic", "", "--hwm", "5", "--settle", "1s", "--log-level", "debug", "--bind"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]any{
		"topic":     "",
		"hwm":       5,
		"settle":    "1s",
		"log.level": "debug",
		"bind":      true,
	}
	if len(got) != len(want) {
		t.Errorf("flagsMap() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("flagsMap()[%q] = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["cooldown"]; ok {
		t.Error("defaulted flags must not be included")
	}
}

func TestRoot_MissingMode(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("--endpoint", "tcp://127.0.0.1:5555")
	if !errors.Is(err, domain.ErrMissingMode) {
		t.Fatalf("err = %v, want ErrMissingMode", err)
	}
	if len(h.sockets) != 0 {
		t.Error("no socket may be opened on a config error")
	}
}

func TestRoot_MissingEndpoint(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run("--mode", "sub"); !errors.Is(err, domain.ErrMissingEndpoint) {
		t.Fatalf("err = %v, want ErrMissingEndpoint", err)
	}
}

func TestRoot_InvalidMode(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("--mode", "req", "--endpoint", "tcp://127.0.0.1:5555")
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestRoot_ModeIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run("--mode", "SUB", "--endpoint", "tcp://127.0.0.1:5555"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.socket(t).Role().String() != "SUB" {
		t.Error("expected a SUB socket")
	}
}

func TestRoot_UnexpectedArgument(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("--mode", "sub", "--endpoint", "tcp://x:1", "extra")
	if err == nil || !strings.Contains(err.Error(), "extra") {
		t.Fatalf("err = %v, want unexpected argument error", err)
	}
}

func TestRoot_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "mode: sub\nendpoint: tcp://10.0.0.1:6000\ntopic: news\n")

	h := newHarness(t, "")
	if err := h.run("--config", cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sock := h.socket(t)
	if got := sock.Endpoints(); len(got) != 1 || got[0] != "tcp://10.0.0.1:6000" {
		t.Errorf("endpoints = %v", got)
	}
	if got := sock.Filters(); len(got) != 1 || got[0] != "news" {
		t.Errorf("filters = %v", got)
	}
}

func TestRoot_FlagOverridesConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "mode: sub\nendpoint: tcp://10.0.0.1:6000\n")

	h := newHarness(t, "")
	if err := h.run("--config", cfg, "--endpoint", "tcp://10.0.0.2:7000"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := h.socket(t).Endpoints(); got[0] != "tcp://10.0.0.2:7000" {
		t.Errorf("endpoint = %v, flag should win", got)
	}
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	h := newHarness(t, "")
	err := h.run("--config", "/nonexistent/zpipe.yaml", "--mode", "sub", "--endpoint", "tcp://x:1")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"success", nil, 0, ""},
		{"config error", fmt.Errorf("load: %w", domain.ErrMissingEndpoint), 1,
			"error: load: [ZP-CONF-4002] endpoint is required\nrun 'zpipe --help' for usage\n"},
		{"transport error", domain.ErrTransport.WithDetails("bind tcp://x"), 1,
			"error: [ZP-TRAN-5000] transport failure: bind tcp://x\n"},
		{"plain error", errors.New("boom"), 1, "error: boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := ReportError(&buf, tt.err); code != tt.wantCode {
				t.Errorf("ReportError() = %d, want %d", code, tt.wantCode)
			}
			if buf.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantOut)
			}
		})
	}
}
