package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/cli/config"
	"github.com/yndnr/zpipe/internal/cli/console"
	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/infra/buildinfo"
	"github.com/yndnr/zpipe/internal/infra/confloader"
	"github.com/yndnr/zpipe/internal/infra/shutdown"
	"github.com/yndnr/zpipe/internal/telemetry/logger"
	"github.com/yndnr/zpipe/internal/telemetry/metric"
	"github.com/yndnr/zpipe/internal/transport"
)

// session holds everything one pub or sub run shares.
type session struct {
	cfg     *config.CLIConfig
	ctx     context.Context
	log     logger.Logger
	console *console.Console
	stdout  io.Writer
	stderr  io.Writer

	shutdown  *shutdown.Handler
	metrics   *metric.Registry
	newSocket SocketFactory
}

func newSession(c *cli.Context, cfg *config.CLIConfig) (*session, error) {
	log, err := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    c.App.ErrWriter,
		SessionID: logger.NewSessionID(),
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}

	h := shutdown.NewHandler(shutdown.DefaultTimeout, log)
	s := &session{
		cfg:       cfg,
		ctx:       h.Context(parent),
		log:       log,
		console:   console.New(c.App.Reader, c.App.Writer),
		stdout:    c.App.Writer,
		stderr:    c.App.ErrWriter,
		shutdown:  h,
		newSocket: socketFactory(c),
	}
	return s, nil
}

// start brings up the session's background services: the metrics
// server and the config watcher. Nothing is started before it runs.
func (s *session) start(configPath string) error {
	if s.cfg.MetricsAddr != "" {
		s.metrics = metric.NewRegistry()
		srv, err := metric.Serve(s.cfg.MetricsAddr, s.metrics)
		if err != nil {
			return err
		}
		s.shutdown.OnShutdown("metrics", srv.Shutdown)
		s.log.Info("metrics server listening", "metrics_addr", srv.Addr())
	}

	s.watchConfig(configPath)

	s.log.Debug("session started",
		"version", buildinfo.String(),
		"mode", string(s.cfg.Mode),
		"endpoint", s.cfg.Endpoint,
		"bind", s.cfg.Bind,
		"transport", backendName(s.cfg.Transport))
	return nil
}

// watchConfig reloads log.level when the config file changes. Failing
// to watch is not fatal.
func (s *session) watchConfig(path string) {
	if path == "" {
		path = config.DefaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			return
		}
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(s.log))
	if err != nil {
		s.log.Warn("config watcher unavailable", "error", err)
		return
	}
	if err := w.Watch(path); err != nil {
		s.log.Warn("config watcher unavailable", "path", path, "error", err)
		_ = w.Stop()
		return
	}

	w.OnChange(func(p string) {
		level, err := config.LoadLogLevel(p)
		if err != nil {
			s.log.Warn("config reload failed", "path", p, "error", err)
			return
		}
		if level == "" || level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(level); err != nil {
			s.log.Warn("config reload ignored", "path", p, "error", err)
			return
		}
		s.log.Info("log level changed", "level", level)
	})
	w.StartAsync()
	s.shutdown.OnShutdown("config-watcher", func(context.Context) error { return w.Stop() })
}

// close runs the shutdown hooks.
func (s *session) close() {
	if err := s.shutdown.Run(); err != nil {
		s.log.Warn("shutdown incomplete", "error", err)
	}
}

// openSocket creates a socket, applies the buffer option for its role
// and binds or connects it.
func (s *session) openSocket(role transport.Role) (transport.Socket, error) {
	sock, err := s.newSocket(s.ctx, s.cfg.Transport, role)
	if err != nil {
		return nil, err
	}

	bufOpt := transport.OptionSendBuffer
	if role == transport.RoleSub {
		bufOpt = transport.OptionRecvBuffer
	}
	if err := s.applyOption(sock, bufOpt, s.cfg.Buf); err != nil {
		sock.Close()
		return nil, err
	}
	if role == transport.RoleSub {
		if err := s.applyOption(sock, transport.OptionRecvHWM, s.cfg.HWM); err != nil {
			sock.Close()
			return nil, err
		}
	}
	return sock, nil
}

// attach binds or connects sock and reports it on the console.
func (s *session) attach(sock transport.Socket) error {
	verb := "connected to"
	attach := sock.Connect
	if s.cfg.Bind {
		verb = "bound to"
		attach = sock.Bind
	}

	if err := attach(s.cfg.Endpoint); err != nil {
		return err
	}
	s.console.Println(fmt.Sprintf("%s %s %s", sock.Role(), verb, s.cfg.Endpoint))
	s.log.Info("socket ready", "role", sock.Role().String(), "endpoint", s.cfg.Endpoint, "bind", s.cfg.Bind)
	return nil
}

// applyOption sets opt when v is non-nil. Backends that cannot apply
// the option only produce a warning.
func (s *session) applyOption(sock transport.Socket, opt transport.Option, v *int) error {
	if v == nil {
		return nil
	}
	err := sock.SetOption(opt, *v)
	if errors.Is(err, domain.ErrUnsupportedOption) {
		s.log.Warn("socket option not applied", "option", string(opt), "value", *v, "error", err)
		return nil
	}
	return err
}

// wait sleeps for d or until the session is cancelled.
func (s *session) wait(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// interruptible runs fn in its own goroutine. It reports whether fn
// finished, with fn's error, or returns false once the session is
// cancelled. fn may still be blocked in a read at that point; the
// caller must not reuse what fn uses.
func (s *session) interruptible(fn func() error) (bool, error) {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return true, err
	case <-s.ctx.Done():
		return false, nil
	}
}

// ignoreCanceled treats session cancellation as a clean exit.
func (s *session) ignoreCanceled(err error) error {
	if err != nil && errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
		s.log.Info("interrupted")
		return nil
	}
	return err
}

func backendName(name string) string {
	if name == "" {
		return transport.DefaultBackend()
	}
	return name
}

// closeOnShutdown registers sock to be closed by the shutdown hooks.
// While busy is set another goroutine may still be inside the socket,
// so it is left for process exit instead.
func (s *session) closeOnShutdown(sock transport.Socket, busy *atomic.Bool) {
	s.shutdown.OnShutdown("socket", func(context.Context) error {
		if busy.Load() {
			s.log.Debug("socket still in use, leaving it to process exit")
			return nil
		}
		return sock.Close()
	})
}
