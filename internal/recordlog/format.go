package recordlog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"
)

// File format constants.
const (
	// HeaderSize is the size of the file header: active (1) + seq_lock (4) + data_offset (4).
	HeaderSize = 9

	// LengthSize is the size of a record's data_len field.
	LengthSize = 4

	// TimestampSize is the size of a record's trailing timestamp.
	TimestampSize = 8

	// RecordOverhead is the fixed per-record size excluding the payload.
	RecordOverhead = LengthSize + TimestampSize

	// SniffSize is the number of leading bytes inspected to pick a format.
	SniffSize = 1024

	// MaxLineSize bounds a single line in text logs.
	MaxLineSize = 16 << 20
)

// Format identifies which parser a log source is dispatched to.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatText
	FormatBinary
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*f = FormatText
	case "binary":
		*f = FormatBinary
	case "", "unknown":
		*f = FormatUnknown
	default:
		return fmt.Errorf("recordlog: unknown format %q", b)
	}
	return nil
}

// Header is the fixed 9-byte record-log header.
//
// Active and SeqLock are carried for inspection only; they never change
// how records are read.
type Header struct {
	Active     bool  `json:"active" yaml:"active"`
	SeqLock    int32 `json:"seq_lock" yaml:"seq_lock"`
	DataOffset int32 `json:"data_offset" yaml:"data_offset"`
}

// MarshalBinary encodes the header into its 9-byte form.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	if h.Active {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], uint32(h.SeqLock))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(h.DataOffset))
	return buf, nil
}

// decodeHeader decodes whatever complete fields are present in buf.
func decodeHeader(buf []byte) Header {
	var h Header
	if len(buf) >= 1 {
		h.Active = buf[0] != 0
	}
	if len(buf) >= 5 {
		h.SeqLock = int32(binary.LittleEndian.Uint32(buf[1:5]))
	}
	if len(buf) >= 9 {
		h.DataOffset = int32(binary.LittleEndian.Uint32(buf[5:9]))
	}
	return h
}

// Record is one payload read from a log source.
type Record struct {
	// Payload is the opaque message body. Zero-length payloads are valid
	// in binary logs.
	Payload []byte

	// Timestamp is the record's Unix-millisecond timestamp. Always zero
	// for text logs.
	Timestamp int64

	// Offset is the byte offset at which the record starts.
	Offset int64

	// Last reports whether no further record follows.
	Last bool
}

// Time returns the record timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Size returns the on-disk size of the record in binary form.
func (r Record) Size() int64 {
	return RecordOverhead + int64(len(r.Payload))
}

// Detect peeks up to SniffSize bytes and selects the parser for the
// source, then rewinds it to offset 0.
//
// Sniffing is strict: a multi-byte sequence cut by the window boundary
// makes the window invalid UTF-8, so the file is treated as binary.
// An empty source is valid (empty) text.
func Detect(r io.ReadSeeker) (Format, error) {
	sniff := make([]byte, SniffSize)
	n, err := io.ReadFull(r, sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatUnknown, fmt.Errorf("recordlog: sniff: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, fmt.Errorf("recordlog: rewind after sniff: %w", err)
	}

	if utf8.Valid(sniff[:n]) {
		return FormatText, nil
	}
	return FormatBinary, nil
}
