package recordlog

import (
	"errors"
	"io"
)

// Summary describes the contents of a log source.
type Summary struct {
	Format       Format  `json:"format" yaml:"format"`
	Header       *Header `json:"header,omitempty" yaml:"header,omitempty"`
	Records      int     `json:"records" yaml:"records"`
	PayloadBytes int64   `json:"payload_bytes" yaml:"payload_bytes"`
	EndOffset    int64   `json:"end_offset" yaml:"end_offset"`
	Truncated    string  `json:"truncated,omitempty" yaml:"truncated,omitempty"`

	// Last is the final payload read, kept for display.
	Last []byte `json:"-" yaml:"-"`
}

// Summarize drains l, calling visit (if non-nil) for each record.
//
// A truncation is recorded in the summary rather than returned; other
// read errors, and errors returned by visit, abort the walk.
func Summarize(l Log, visit func(Record) error) (Summary, error) {
	s := Summary{Format: l.Format()}

	if b, ok := l.(*BinaryLog); ok {
		h, err := b.Header()
		s.Header = &h
		if err != nil {
			if !IsTruncated(err) {
				return s, err
			}
			s.Truncated = err.Error()
		}
	}

	for {
		rec, err := l.Next()
		if err != nil {
			s.EndOffset = l.Offset()
			if errors.Is(err, io.EOF) {
				return s, nil
			}
			if IsTruncated(err) {
				s.Truncated = err.Error()
				return s, nil
			}
			return s, err
		}

		s.Records++
		s.PayloadBytes += int64(len(rec.Payload))
		s.Last = rec.Payload

		if visit != nil {
			if err := visit(rec); err != nil {
				return s, err
			}
		}
	}
}
