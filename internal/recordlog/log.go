package recordlog

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Log is a lazily read, finite sequence of records. It is implemented
// by *TextLog and *BinaryLog; the variant is chosen once, by Open.
type Log interface {
	// Format reports which parser the source was dispatched to.
	Format() Format

	// Next returns the next record, or io.EOF when the source is exhausted.
	Next() (Record, error)

	// Offset returns the current byte position within the source.
	Offset() int64

	// Limit returns the position at which reading ends, or -1 if unknown.
	Limit() int64

	// Close releases the underlying source.
	Close() error
}

var (
	_ Log = (*TextLog)(nil)
	_ Log = (*BinaryLog)(nil)
)

type options struct {
	maxLineSize int
}

// Option configures Open.
type Option func(*options)

// WithMaxLineSize sets the longest line accepted from a text log.
func WithMaxLineSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineSize = n
		}
	}
}

// Open opens a log file, sniffs its format and returns the matching reader.
func Open(path string, opts ...Option) (Log, error) {
	o := options{maxLineSize: MaxLineSize}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recordlog: open: %w", err)
	}

	format, err := Detect(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	switch format {
	case FormatText:
		t := newTextLog(f, o.maxLineSize)
		t.closer = f
		if stat, err := f.Stat(); err == nil {
			t.size.Store(stat.Size())
		}
		return t, nil
	default:
		b := NewBinaryLog(f)
		b.closer = f
		return b, nil
	}
}

// ReadAll drains l and returns every record. A truncation error is
// returned together with the records read before it.
func ReadAll(l Log) ([]Record, error) {
	var out []Record
	for {
		rec, err := l.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, rec)
	}
}
