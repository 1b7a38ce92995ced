package recordlog

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// defaultReadBufferSize is the bufio buffer size used by binary readers.
const defaultReadBufferSize = 64 << 10

// BinaryLog reads records from a binary record-log.
type BinaryLog struct {
	r      *bufio.Reader
	closer io.Closer

	header     Header
	headerRead bool
	headerErr  error

	// offset and limit are sampled by metric scrapes while Next runs.
	offset atomic.Int64
	limit  atomic.Int64
	done   bool
}

// NewBinaryLog creates a reader over a binary record-log positioned at
// the start of its header.
func NewBinaryLog(r io.Reader) *BinaryLog {
	return &BinaryLog{
		r: bufio.NewReaderSize(r, defaultReadBufferSize),
	}
}

// Format returns FormatBinary.
func (b *BinaryLog) Format() Format {
	return FormatBinary
}

// Header reads (once) and returns the file header. When the header is
// short, the complete fields are returned together with a
// *TruncatedRecordError.
func (b *BinaryLog) Header() (Header, error) {
	if !b.headerRead {
		b.readHeader()
	}
	return b.header, b.headerErr
}

// Offset returns the byte offset of the next record.
func (b *BinaryLog) Offset() int64 {
	return b.offset.Load()
}

// Limit returns the declared data_offset, or 0 before the header is read.
func (b *BinaryLog) Limit() int64 {
	return b.limit.Load()
}

// Next returns the next record, or io.EOF once the running offset
// reaches data_offset.
//
// A short read yields the partially decoded record (unread fields left
// zero) together with a *TruncatedRecordError; every later call returns
// io.EOF. Read errors other than EOF are returned as-is.
func (b *BinaryLog) Next() (Record, error) {
	if b.done {
		return Record{}, io.EOF
	}

	if !b.headerRead {
		if err := b.readHeader(); err != nil {
			b.done = true
			return Record{}, err
		}
	}

	offset, limit := b.offset.Load(), b.limit.Load()
	if offset >= limit {
		b.done = true
		return Record{}, io.EOF
	}

	rec := Record{Offset: offset}

	var lenBuf [LengthSize]byte
	if n, err := io.ReadFull(b.r, lenBuf[:]); err != nil {
		return rec, b.fail(rec.Offset, FieldLength, LengthSize, int64(n), err)
	}

	dataLen := int32(binary.LittleEndian.Uint32(lenBuf[:]))
	if dataLen < 0 {
		b.done = true
		return rec, &TruncatedRecordError{
			Offset: rec.Offset,
			Field:  FieldLength,
			Want:   int64(dataLen),
			Err:    ErrInvalidLength,
		}
	}

	// Copy incrementally so a bogus data_len never pre-allocates.
	var payload bytes.Buffer
	got, err := io.CopyN(&payload, b.r, int64(dataLen))
	rec.Payload = payload.Bytes()
	if rec.Payload == nil {
		rec.Payload = []byte{}
	}
	if err != nil {
		return rec, b.fail(rec.Offset, FieldPayload, int64(dataLen), got, err)
	}

	var tsBuf [TimestampSize]byte
	if n, err := io.ReadFull(b.r, tsBuf[:]); err != nil {
		return rec, b.fail(rec.Offset, FieldTimestamp, TimestampSize, int64(n), err)
	}
	rec.Timestamp = int64(binary.LittleEndian.Uint64(tsBuf[:]))

	next := b.offset.Add(RecordOverhead + int64(dataLen))
	rec.Last = next >= limit
	return rec, nil
}

// Close closes the underlying source if it was opened by Open.
func (b *BinaryLog) Close() error {
	b.done = true
	if b.closer != nil {
		err := b.closer.Close()
		b.closer = nil
		return err
	}
	return nil
}

func (b *BinaryLog) readHeader() error {
	b.headerRead = true

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(b.r, buf)
	b.header = decodeHeader(buf[:n])
	b.offset.Store(HeaderSize)
	if err != nil {
		b.headerErr = b.fail(0, FieldHeader, HeaderSize, int64(n), err)
		return b.headerErr
	}
	b.limit.Store(int64(b.header.DataOffset))
	return nil
}

// fail marks the reader exhausted and classifies err.
func (b *BinaryLog) fail(offset int64, field Field, want, got int64, err error) error {
	b.done = true
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &TruncatedRecordError{
			Offset: offset,
			Field:  field,
			Want:   want,
			Got:    got,
			Err:    io.ErrUnexpectedEOF,
		}
	}
	return fmt.Errorf("recordlog: read %s at offset %d: %w", field, offset, err)
}
