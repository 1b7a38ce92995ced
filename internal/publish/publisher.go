package publish

import (
	"context"
	"errors"
	"io"

	"golang.org/x/time/rate"

	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/recordlog"
	"github.com/yndnr/zpipe/internal/telemetry/logger"
	"github.com/yndnr/zpipe/internal/telemetry/metric"
	"github.com/yndnr/zpipe/internal/transport"
)

// Progress receives replay position updates. *output.ProgressBar
// satisfies it.
type Progress interface {
	Update(current, total int64)
	Finish()
}

// LineSource yields interactive input lines without their terminator.
// It returns io.EOF when input ends.
type LineSource interface {
	Next() (string, error)
}

// Stats summarizes one replay.
type Stats struct {
	Format    recordlog.Format
	Sent      int
	Skipped   int
	Truncated int
	Pauses    int
	Last      []byte
}

// Publisher sends every message under one fixed topic.
type Publisher struct {
	sender      transport.Sender
	topic       string
	pacer       *Pacer
	limiter     *rate.Limiter
	onTruncated TruncatedPolicy
	progress    Progress
	log         logger.Logger
	metrics     *metric.Registry
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPacer sets the replay pacer. Without one, replay is not paced.
func WithPacer(p *Pacer) Option {
	return func(pub *Publisher) {
		if p != nil {
			pub.pacer = p
		}
	}
}

// WithRate limits replay to perSecond messages. Zero or less means
// unlimited.
func WithRate(perSecond float64) Option {
	return func(pub *Publisher) {
		if perSecond <= 0 {
			pub.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		pub.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTruncatedPolicy sets how truncated records are handled.
func WithTruncatedPolicy(p TruncatedPolicy) Option {
	return func(pub *Publisher) {
		if p != "" {
			pub.onTruncated = p
		}
	}
}

// WithProgress reports replay position to p.
func WithProgress(p Progress) Option {
	return func(pub *Publisher) {
		pub.progress = p
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(pub *Publisher) {
		if l != nil {
			pub.log = l
		}
	}
}

// WithMetrics records sends, pauses and truncations in r.
func WithMetrics(r *metric.Registry) Option {
	return func(pub *Publisher) {
		pub.metrics = r
	}
}

// New creates a publisher sending under topic.
func New(sender transport.Sender, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		sender:      sender,
		topic:       topic,
		pacer:       NewPacer(0, 0),
		onTruncated: PolicySkip,
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Topic returns the topic every message is sent under.
func (p *Publisher) Topic() string {
	return p.topic
}

// Send sends one message: the topic frame, then the payload frame.
func (p *Publisher) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.sender.Send(p.topic, payload)
}

// Replay publishes every record of l in order, pausing per the pacer.
// Empty text lines never reach the publisher; empty binary payloads
// are sent. Cancelling ctx stops replay with ctx.Err().
func (p *Publisher) Replay(ctx context.Context, l recordlog.Log) (Stats, error) {
	st := Stats{Format: l.Format()}
	startPauses := p.pacer.Pauses()

	if p.metrics != nil {
		p.metrics.Replay.Track(l)
		defer p.metrics.Replay.Track(nil)
	}

	log := p.log.With("format", st.Format.String(), "topic", p.topic)
	log.Info("replay started", "hwm", p.pacer.HWM())

	err := p.replay(ctx, l, &st, log)
	st.Pauses = p.pacer.Pauses() - startPauses

	if p.progress != nil {
		p.progress.Finish()
	}
	if err != nil {
		return st, err
	}

	log.Info("replay complete",
		"total", st.Sent,
		"last", domain.Display(st.Last),
		"pauses", st.Pauses,
		"truncated", st.Truncated)
	return st, nil
}

func (p *Publisher) replay(ctx context.Context, l recordlog.Log, st *Stats, log logger.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := l.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if !recordlog.IsTruncated(err) {
				return err
			}
			st.Truncated++
			if p.metrics != nil {
				p.metrics.RecordsTruncated.Inc()
			}
			if p.onTruncated == PolicyFail {
				return err
			}
			log.Warn("skipping truncated record", "offset", rec.Offset, "error", err)
			continue
		}

		if st.Format == recordlog.FormatText && len(rec.Payload) == 0 {
			st.Skipped++
			continue
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		if err := p.Send(ctx, rec.Payload); err != nil {
			return err
		}
		st.Sent++
		st.Last = rec.Payload
		if p.metrics != nil {
			p.metrics.MessagesSent.WithLabelValues(metric.PhaseReplay).Inc()
		}
		if p.progress != nil {
			p.progress.Update(l.Offset(), l.Limit())
		}

		paused, err := p.pacer.Done(ctx)
		if err != nil {
			return err
		}
		if paused {
			log.Debug("high-water-mark reached, cooling down", "sent", st.Sent)
			if p.metrics != nil {
				p.metrics.ThrottlePauses.Inc()
			}
		}
	}
}

// Interactive sends every line from lines, empty lines included, until
// the source is exhausted (nil) or ctx is cancelled. It is not paced.
// It returns the number of messages sent.
func (p *Publisher) Interactive(ctx context.Context, lines LineSource) (int, error) {
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}

		if err := p.Send(ctx, []byte(line)); err != nil {
			return sent, err
		}
		sent++
		if p.metrics != nil {
			p.metrics.MessagesSent.WithLabelValues(metric.PhaseInteractive).Inc()
		}
	}
}
