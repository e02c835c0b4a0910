package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const watchTestConfig = `
server:
  listen_address: "127.0.0.1:8080"

telemetry:
  logging:
    level: "info"
    format: "json"
`

func TestNewWatcher(t *testing.T) {
	if _, err := NewWatcher("", 0, nil); err == nil {
		t.Error("expected error for empty path")
	}

	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.yaml"), 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v, want nil", err)
	}
	if w.debounce != DefaultWatchDebounce {
		t.Errorf("expected default debounce %v, got %v", DefaultWatchDebounce, w.debounce)
	}

	// Stop before Watch is a no-op
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() before Watch error = %v, want nil", err)
	}
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(watchTestConfig), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(configPath, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	reloaded := make(chan *Config, 10)
	onChange := func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, onChange)
	}()

	// Wait for watcher to start
	time.Sleep(100 * time.Millisecond)

	newContent := `
server:
  listen_address: "0.0.0.0:9090"

telemetry:
  logging:
    level: "debug"
    format: "json"
`
	if err := os.WriteFile(configPath, []byte(newContent), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Server.ListenAddress != "0.0.0.0:9090" {
			t.Errorf("expected reloaded listen address %q, got %q", "0.0.0.0:9090", cfg.Server.ListenAddress)
		}
		if cfg.Telemetry.Logging.Level != "debug" {
			t.Errorf("expected reloaded logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
		}
	case <-time.After(2 * time.Second):
		t.Error("onChange not called after file modification")
	}
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(watchTestConfig), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(configPath, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	var changes atomic.Int32
	onChange := func(cfg *Config) {
		changes.Add(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, onChange)
	}()

	time.Sleep(100 * time.Millisecond)

	// Unknown provider kind fails validation; the callback must not fire
	invalid := `
providers:
  default_kind: "carrier-pigeon"
`
	if err := os.WriteFile(configPath, []byte(invalid), 0644); err != nil {
		t.Fatal(err)
	}

	// Give the debounced reload time to run
	time.Sleep(500 * time.Millisecond)

	if n := changes.Load(); n != 0 {
		t.Errorf("expected no onChange for invalid config, got %d calls", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(watchTestConfig), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(configPath, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	var changes atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(cfg *Config) { changes.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)

	// A sibling file in the watched directory must not trigger a reload
	other := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(other, []byte("unrelated"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)

	if n := changes.Load(); n != 0 {
		t.Errorf("expected no onChange for sibling file, got %d calls", n)
	}
}

func TestWatcher_DoubleStart(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(watchTestConfig), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(configPath, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Watch(ctx, func(cfg *Config) {})
	}()

	<-started
	time.Sleep(100 * time.Millisecond)

	if err := w.Watch(ctx, func(cfg *Config) {}); err == nil {
		t.Error("expected error for second Watch call")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
}
