package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/yndnr/zpipe/internal/cli/console"
	"github.com/yndnr/zpipe/internal/recordlog"
	"github.com/yndnr/zpipe/internal/subscribe"
	"github.com/yndnr/zpipe/internal/transport"
)

// runSubscriber prints every received message to the console, or to
// the output file when one is configured, until interrupted.
func runSubscriber(s *session) error {
	cfg := s.cfg

	sock, err := s.openSocket(transport.RoleSub)
	if err != nil {
		return err
	}
	var busy atomic.Bool
	s.closeOnShutdown(sock, &busy)

	if err := s.attach(sock); err != nil {
		return err
	}
	topic := cfg.TopicOrEmpty()
	if err := sock.Subscribe(topic); err != nil {
		return err
	}
	if cfg.TopicSet() {
		s.console.Println("Subscribed to topic: " + topic)
	} else {
		s.console.Println("Subscribed to all topics")
	}

	printer, err := s.openPrinter()
	if err != nil {
		return err
	}

	opts := []subscribe.Option{
		subscribe.WithLogger(s.log),
		subscribe.WithMetrics(s.metrics),
	}
	if cfg.Record != "" {
		w, err := recordlog.Create(cfg.Record)
		if err != nil {
			return err
		}
		s.shutdown.OnShutdown("record", func(context.Context) error { return w.Close() })
		opts = append(opts, subscribe.WithCapture(w))
		s.log.Info("capturing payloads", "path", cfg.Record)
	}
	sub := subscribe.New(sock, printer, opts...)

	s.console.Println("Waiting for messages...")

	busy.Store(true)
	finished, err := s.interruptible(func() error { return sub.Run(s.ctx) })
	if !finished {
		return nil
	}
	busy.Store(false)

	s.log.Info("receive loop ended", "received", sub.Received(), "malformed", sub.Malformed())
	if errors.Is(err, io.EOF) {
		return nil
	}
	return s.ignoreCanceled(err)
}

// confirmOutput settles whether sub mode may write its output file.
// It runs before anything else is started, so a declined overwrite
// leaves no trace.
func (s *session) confirmOutput() (bool, error) {
	if s.cfg.File == "" {
		return true, nil
	}

	var ok bool
	finished, err := s.interruptible(func() error {
		var err error
		ok, err = s.confirmOverwrite(s.cfg.File)
		return err
	})
	if !finished || err != nil {
		return false, err
	}
	if !ok {
		s.console.Println(console.AbortMessage)
	}
	return ok, nil
}

// confirmOverwrite asks before replacing an existing output file. It
// returns true when path does not exist or --force is set.
func (s *session) confirmOverwrite(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output file: %w", err)
	}
	if s.cfg.Force {
		s.log.Info("overwriting output file", "path", path)
		return true, nil
	}
	return s.console.Confirm(console.OverwritePrompt(path))
}

// openPrinter returns the console printer, or a numbered printer over a
// periodically flushed output file.
func (s *session) openPrinter() (*subscribe.Printer, error) {
	if s.cfg.File == "" {
		return subscribe.NewConsolePrinter(s.stdout), nil
	}

	f, err := os.OpenFile(s.cfg.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, recordlog.DefaultFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	fw := subscribe.NewFlushWriter(f, s.cfg.FlushInterval, s.log)
	s.shutdown.OnShutdown("output", func(context.Context) error { return fw.Close() })
	return subscribe.NewFilePrinter(fw), nil
}
