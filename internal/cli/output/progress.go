package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar draws replay progress on a terminal line. Redraws are
// rate-limited so per-message updates stay cheap.
type ProgressBar struct {
	mu sync.Mutex
	w  io.Writer

	title    string
	width    int
	current  int64
	total    int64
	updates  int64
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(w io.Writer, title string) *ProgressBar {
	return &ProgressBar{
		w:        w,
		title:    title,
		width:    40,
		interval: 100 * time.Millisecond,
		now:      time.Now,
	}
}

// Update sets the position. A total of zero or less means unknown.
func (p *ProgressBar) Update(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.total = total
	p.updates++

	if now := p.now(); now.Sub(p.last) >= p.interval {
		p.last = now
		p.render()
	}
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s, %d msgs", p.title, formatBytes(p.current), p.updates)
		return
	}

	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%s/%s), %d msgs",
		p.title,
		bar,
		percent*100,
		formatBytes(p.current),
		formatBytes(p.total),
		p.updates,
	)
}

// formatBytes formats bytes to human readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
