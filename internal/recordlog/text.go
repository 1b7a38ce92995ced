package recordlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// TextLog reads newline-delimited messages, one per line.
//
// Line terminators ("\n" or "\r\n") are stripped and empty lines are
// dropped. Line content is passed through untouched, even when bytes
// past the sniff window are not valid UTF-8.
type TextLog struct {
	sc     *bufio.Scanner
	closer io.Closer

	// consumed and size are sampled by metric scrapes while Next runs.
	consumed atomic.Int64
	size     atomic.Int64

	pending line
	primed  bool
}

type line struct {
	data   []byte
	offset int64
	err    error
}

// NewTextLog creates a reader over newline-delimited text.
func NewTextLog(r io.Reader) *TextLog {
	return newTextLog(r, MaxLineSize)
}

func newTextLog(r io.Reader, maxLine int) *TextLog {
	t := &TextLog{}
	t.size.Store(-1)
	t.sc = bufio.NewScanner(r)
	initial := 64 << 10
	if maxLine < initial {
		initial = maxLine
	}
	t.sc.Buffer(make([]byte, 0, initial), maxLine)
	t.sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		t.consumed.Add(int64(advance))
		return advance, token, err
	})
	return t
}

// Format returns FormatText.
func (t *TextLog) Format() Format {
	return FormatText
}

// Offset returns the number of bytes consumed so far.
func (t *TextLog) Offset() int64 {
	return t.consumed.Load()
}

// Limit returns the source size in bytes, or -1 when unknown.
func (t *TextLog) Limit() int64 {
	return t.size.Load()
}

// Next returns the next non-empty line, or io.EOF.
func (t *TextLog) Next() (Record, error) {
	if !t.primed {
		t.pending = t.scan()
		t.primed = true
	}

	cur := t.pending
	if cur.err != nil {
		return Record{}, cur.err
	}

	t.pending = t.scan()
	return Record{
		Payload: cur.data,
		Offset:  cur.offset,
		Last:    errors.Is(t.pending.err, io.EOF),
	}, nil
}

// Close closes the underlying source if it was opened by Open.
func (t *TextLog) Close() error {
	if t.closer != nil {
		err := t.closer.Close()
		t.closer = nil
		return err
	}
	return nil
}

// scan reads ahead to the next non-empty line.
func (t *TextLog) scan() line {
	for {
		start := t.consumed.Load()
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return line{err: fmt.Errorf("recordlog: read line at offset %d: %w", start, err)}
			}
			return line{err: io.EOF}
		}

		tok := t.sc.Bytes()
		if len(tok) == 0 {
			continue
		}

		data := make([]byte, len(tok))
		copy(data, tok)
		return line{data: data, offset: start}
	}
}
