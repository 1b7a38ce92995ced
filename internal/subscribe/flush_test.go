package subscribe

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// syncFile is a goroutine-safe in-memory io.WriteCloser.
type syncFile struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (f *syncFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Write(p)
}

func (f *syncFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *syncFile) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func (f *syncFile) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestFlushWriter_FlushesOnInterval(t *testing.T) {
	dst := &syncFile{}
	w := NewFlushWriter(dst, 20*time.Millisecond, nil)
	defer w.Close()

	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if dst.String() != "" {
		t.Fatalf("destination = %q before the first tick", dst.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for dst.String() != "line\n" {
		if time.Now().After(deadline) {
			t.Fatalf("destination = %q, want flushed line", dst.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if w.Buffered() != 0 {
		t.Fatalf("Buffered() = %d, want 0", w.Buffered())
	}
}

func TestFlushWriter_FlushesOnClose(t *testing.T) {
	dst := &syncFile{}
	w := NewFlushWriter(dst, time.Hour, nil)

	if _, err := w.Write([]byte("pending")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.Buffered() != len("pending") {
		t.Fatalf("Buffered() = %d, want %d", w.Buffered(), len("pending"))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if dst.String() != "pending" || !dst.isClosed() {
		t.Fatalf("destination = %q (closed %v), want flushed and closed", dst.String(), dst.isClosed())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := w.Write([]byte("late")); !errors.Is(err, ErrFlushWriterClosed) {
		t.Fatalf("Write after Close = %v, want ErrFlushWriterClosed", err)
	}
}

func TestFlushWriter_ConcurrentWrites(t *testing.T) {
	dst := &syncFile{}
	w := NewFlushWriter(dst, time.Millisecond, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = w.Write([]byte("x"))
			}
		}()
	}
	wg.Wait()

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(dst.String()); n != 800 {
		t.Fatalf("wrote %d bytes, want 800", n)
	}
}

func TestFlushWriter_DefaultInterval(t *testing.T) {
	w := NewFlushWriter(&syncFile{}, 0, nil)
	defer w.Close()
	if w.interval != DefaultFlushInterval {
		t.Fatalf("interval = %v, want %v", w.interval, DefaultFlushInterval)
	}
}
