package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestProgressRendersBar(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(100)
	progress.Update(50)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "50/100") {
		t.Errorf("expected intermediate count in output, got %q", output)
	}
	if !strings.Contains(output, "100/100") {
		t.Errorf("expected final count in output, got %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Finish should terminate the bar line")
	}
}

func TestProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	// A zero total must not divide by zero or render a bar.
	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if got := buf.String(); got != "\n" {
		t.Errorf("expected only the Finish newline, got %q", got)
	}
}

func TestProgressConcurrentUpdates(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(1000)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < 125; i++ {
				progress.Update(base + i)
			}
		}(int64(w) * 125)
	}
	wg.Wait()

	progress.Finish()

	if buf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	// nil writer defaults to stdout; just exercise the paths.
	progress := NewProgressReporter(nil)
	progress.Start(2)
	progress.Update(1)
	progress.Finish()
}
