package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KB",
		1536:        "1.5 KB",
		1048576:     "1.0 MB",
		1073741824:  "1.0 GB",
		5 * 1 << 40: "5.0 TB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressBar_KnownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "replay")

	p.Update(50, 100)
	if !strings.Contains(buf.String(), " 50%") {
		t.Errorf("output = %q", buf.String())
	}

	p.Finish()
	out := buf.String()
	if !strings.Contains(out, "100%") || !strings.HasSuffix(out, "\n") {
		t.Errorf("finish output = %q", out)
	}
	if !strings.Contains(out, "1 msgs") {
		t.Errorf("message count missing: %q", out)
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "replay")
	p.Update(2048, -1)

	if !strings.Contains(buf.String(), "replay 2.0 KB, 1 msgs") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgressBar_RateLimited(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "replay")

	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	p.Update(1, 10)
	first := buf.Len()
	p.Update(2, 10)
	if buf.Len() != first {
		t.Error("redraw within interval")
	}

	now = now.Add(time.Second)
	p.Update(3, 10)
	if buf.Len() == first {
		t.Error("no redraw after interval")
	}
}
