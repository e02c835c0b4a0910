package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter renders progress for a long-running command. The
// benchmark command drives one from several worker goroutines, so
// implementations must be safe for concurrent use.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

type barProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter writing a single
// carriage-return-updated bar line to w. A nil w means os.Stdout.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &barProgress{writer: w}
}

// Start resets the bar to zero out of total and notes the start time
// used for the rate estimate.
func (p *barProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render()
}

// Update redraws the bar at the given completion count.
func (p *barProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish draws the bar full and terminates the line.
func (p *barProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

const barWidth = 40

func (p *barProgress) render() {
	if p.total <= 0 {
		return
	}

	fraction := float64(p.current) / float64(p.total)
	filled := int(barWidth * fraction)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fmt.Fprintf(p.writer, "\r[%s] %3.0f%% %d/%d %.1f req/s",
		bar, fraction*100, p.current, p.total, rate)
}
