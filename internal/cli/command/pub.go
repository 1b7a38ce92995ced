package command

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/yndnr/zpipe/internal/cli/console"
	"github.com/yndnr/zpipe/internal/cli/output"
	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/publish"
	"github.com/yndnr/zpipe/internal/recordlog"
	"github.com/yndnr/zpipe/internal/transport"
)

// runPublisher replays the configured file, if any, and then publishes
// stdin line by line until input ends or the process is interrupted.
func runPublisher(s *session) error {
	cfg := s.cfg

	policy, err := publish.ParseTruncatedPolicy(cfg.OnTruncated)
	if err != nil {
		return err
	}

	sock, err := s.openSocket(transport.RolePub)
	if err != nil {
		return err
	}
	var busy atomic.Bool
	s.closeOnShutdown(sock, &busy)

	hwm, err := publish.ResolveHWM(cfg.HWM, sock, s.log)
	if err != nil {
		return err
	}
	if err := s.attach(sock); err != nil {
		return err
	}
	if err := s.wait(cfg.Settle); err != nil {
		return s.ignoreCanceled(err)
	}

	topic := cfg.TopicOrEmpty()
	if !cfg.TopicSet() {
		var answer string
		finished, err := s.interruptible(func() error {
			var err error
			answer, err = s.console.Prompt(console.TopicPrompt)
			return err
		})
		if !finished {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read topic: %w", err)
		}
		topic = answer
	}

	opts := []publish.Option{
		publish.WithPacer(publish.NewPacer(hwm, cfg.Cooldown)),
		publish.WithRate(cfg.Rate),
		publish.WithTruncatedPolicy(policy),
		publish.WithLogger(s.log),
		publish.WithMetrics(s.metrics),
	}
	if cfg.File != "" && cfg.Progress {
		opts = append(opts, publish.WithProgress(output.NewProgressBar(s.stderr, "replay")))
	}
	pub := publish.New(sock, topic, opts...)

	if cfg.File != "" {
		if err := s.replay(pub, cfg.File); err != nil {
			return s.ignoreCanceled(err)
		}
	}

	return s.interactive(pub, &busy)
}

// replay publishes every record of the log at path.
func (s *session) replay(pub *publish.Publisher, path string) error {
	l, err := recordlog.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	st, err := pub.Replay(s.ctx, l)
	if err != nil {
		return err
	}
	s.console.Println(fmt.Sprintf("%d => %s", st.Sent, domain.Display(st.Last)))
	return nil
}

// interactive publishes stdin lines, empty ones included.
func (s *session) interactive(pub *publish.Publisher, busy *atomic.Bool) error {
	var history *console.History
	if s.cfg.History != "" {
		history = console.NewHistory(s.cfg.History, console.DefaultHistorySize)
		if err := history.Load(); err != nil {
			s.log.Warn("history not loaded", "path", s.cfg.History, "error", err)
		}
		defer func() {
			if err := history.Save(); err != nil {
				s.log.Warn("history not saved", "path", s.cfg.History, "error", err)
			}
		}()
	}

	s.console.Println(console.MessagePrompt)

	var sent int
	busy.Store(true)
	finished, err := s.interruptible(func() error {
		var err error
		sent, err = pub.Interactive(s.ctx, s.console.Lines(history))
		return err
	})
	if !finished {
		return nil
	}
	busy.Store(false)

	s.log.Info("input closed", "sent", sent)
	return s.ignoreCanceled(err)
}
