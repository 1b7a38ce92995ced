package recordlog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"
)

// Default file permissions for logs created by Create.
const DefaultFilePerm = 0644

// Writer appends records to a binary record-log.
//
// The header is written with active=1 when the writer is created. Flush
// patches data_offset so the file is replayable while still open; Close
// patches it a final time and clears active.
type Writer struct {
	mu sync.Mutex

	ws     io.WriteSeeker
	bw     *bufio.Writer
	closer io.Closer

	offset int64
	count  int
	closed bool
}

// NewWriter writes an empty header to ws and returns a Writer. ws must
// be positioned at offset 0.
func NewWriter(ws io.WriteSeeker) (*Writer, error) {
	w := &Writer{
		ws:     ws,
		bw:     bufio.NewWriterSize(ws, defaultReadBufferSize),
		offset: HeaderSize,
	}
	if err := w.writeHeader(true); err != nil {
		return nil, err
	}
	return w, nil
}

// Create creates (or truncates) the file at path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, DefaultFilePerm)
	if err != nil {
		return nil, fmt.Errorf("recordlog: create: %w", err)
	}

	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Append buffers one record with the given timestamp.
func (w *Writer) Append(payload []byte, ts time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	size := RecordOverhead + int64(len(payload))
	if w.offset+size > math.MaxInt32 {
		return ErrLogFull
	}

	var lenBuf [LengthSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	var tsBuf [TimestampSize]byte
	binary.LittleEndian.PutUint64(tsBuf[:], uint64(ts.UnixMilli()))

	if _, err := w.bw.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("recordlog: write data_len: %w", err)
	}
	if _, err := w.bw.Write(payload); err != nil {
		return fmt.Errorf("recordlog: write payload: %w", err)
	}
	if _, err := w.bw.Write(tsBuf[:]); err != nil {
		return fmt.Errorf("recordlog: write timestamp: %w", err)
	}

	w.offset += size
	w.count++
	return nil
}

// Flush writes buffered records and patches data_offset.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.writeHeader(true)
}

// Count returns the number of records appended.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Offset returns the current data_offset (header plus all records).
func (w *Writer) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offset
}

// Close flushes, finalizes the header and closes the file if it was
// opened by Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.writeHeader(false)
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// writeHeader flushes pending records, rewrites the header in place and
// returns the cursor to the end of the data.
func (w *Writer) writeHeader(active bool) error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("recordlog: flush: %w", err)
	}

	hdr, _ := Header{Active: active, DataOffset: int32(w.offset)}.MarshalBinary()

	if _, err := w.ws.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("recordlog: seek header: %w", err)
	}
	if _, err := w.ws.Write(hdr); err != nil {
		return fmt.Errorf("recordlog: write header: %w", err)
	}
	if _, err := w.ws.Seek(w.offset, io.SeekStart); err != nil {
		return fmt.Errorf("recordlog: seek end: %w", err)
	}
	return nil
}
