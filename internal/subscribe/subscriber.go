package subscribe

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/telemetry/logger"
	"github.com/yndnr/zpipe/internal/telemetry/metric"
	"github.com/yndnr/zpipe/internal/transport"
)

// Capture receives a copy of every payload. *recordlog.Writer
// satisfies it.
type Capture interface {
	Append(payload []byte, ts time.Time) error
}

// Subscriber receives, decodes and prints messages.
type Subscriber struct {
	recv    transport.Receiver
	printer *Printer
	capture Capture
	log     logger.Logger
	metrics *metric.Registry
	now     func() time.Time

	seq       uint64
	malformed int
}

// Option configures a Subscriber.
type Option func(*Subscriber)

// WithCapture appends every received payload to c.
func WithCapture(c Capture) Option {
	return func(s *Subscriber) {
		s.capture = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Subscriber) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics counts received and malformed messages in r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Subscriber) {
		s.metrics = r
	}
}

// New creates a subscriber reading from recv and printing with p.
func New(recv transport.Receiver, p *Printer, opts ...Option) *Subscriber {
	s := &Subscriber{
		recv:    recv,
		printer: p,
		log:     logger.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Received returns how many messages have been printed.
func (s *Subscriber) Received() uint64 {
	return s.seq
}

// Malformed returns how many messages were skipped for bad framing.
func (s *Subscriber) Malformed() int {
	return s.malformed
}

// Run receives until ctx is done or the transport fails. ctx is checked
// between messages; a blocked receive is not interrupted. Messages with
// the wrong number of frames are logged and skipped.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frames, err := s.recv.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if err := s.Handle(frames); err != nil {
			return err
		}
	}
}

// Handle decodes and prints one received message. Framing errors are
// counted and swallowed; output errors are returned.
func (s *Subscriber) Handle(frames [][]byte) error {
	msg, err := Decode(frames, s.seq+1)
	if err != nil {
		if errors.Is(err, domain.ErrFrameCount) {
			s.malformed++
			if s.metrics != nil {
				s.metrics.FramesMalformed.Inc()
			}
			s.log.Warn("skipping malformed message", "frames", len(frames), "error", err)
			return nil
		}
		return err
	}

	s.seq = msg.Seq
	if s.metrics != nil {
		s.metrics.MessagesReceived.Inc()
	}

	if err := s.printer.Print(msg); err != nil {
		return err
	}
	if s.capture != nil {
		if err := s.capture.Append(msg.Payload, s.now()); err != nil {
			return err
		}
	}
	return nil
}
