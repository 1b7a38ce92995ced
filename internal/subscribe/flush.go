package subscribe

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/yndnr/zpipe/internal/telemetry/logger"
)

// DefaultFlushInterval bounds how much buffered output a crash can lose.
const DefaultFlushInterval = 3 * time.Second

// ErrFlushWriterClosed is returned by writes after Close.
var ErrFlushWriterClosed = errors.New("subscribe: flush writer closed")

// FlushWriter buffers writes to an underlying file and flushes them
// every interval from a background goroutine. The lock is held for a
// single write or a single flush, never across the interval.
type FlushWriter struct {
	mu     sync.Mutex
	bw     *bufio.Writer
	dst    io.WriteCloser
	closed bool

	interval time.Duration
	log      logger.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewFlushWriter wraps dst and starts the flush loop. An interval of
// zero or less uses DefaultFlushInterval.
func NewFlushWriter(dst io.WriteCloser, interval time.Duration, log logger.Logger) *FlushWriter {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if log == nil {
		log = logger.Discard()
	}

	f := &FlushWriter{
		bw:       bufio.NewWriter(dst),
		dst:      dst,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go f.flushLoop()
	return f
}

// Write appends p to the buffer.
func (f *FlushWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrFlushWriterClosed
	}
	return f.bw.Write(p)
}

// Flush writes buffered data to the underlying file.
func (f *FlushWriter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	return f.bw.Flush()
}

// Buffered returns the number of bytes not yet flushed.
func (f *FlushWriter) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bw.Buffered()
}

// Close stops the flush loop, flushes what is left and closes the file.
// It is safe to call more than once.
func (f *FlushWriter) Close() error {
	f.closeOnce.Do(func() {
		close(f.stop)
		<-f.done

		f.mu.Lock()
		defer f.mu.Unlock()

		f.closed = true
		flushErr := f.bw.Flush()
		closeErr := f.dst.Close()
		f.closeErr = errors.Join(flushErr, closeErr)
	})
	return f.closeErr
}

func (f *FlushWriter) flushLoop() {
	defer close(f.done)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			if err := f.Flush(); err != nil {
				f.log.Warn("periodic flush failed", "error", err)
			}
		}
	}
}
