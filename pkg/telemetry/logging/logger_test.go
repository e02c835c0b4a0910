package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"caseflow-hq/polaris/pkg/config"
)

// TestNew tests logger construction from configuration.
func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.LoggingConfig
		expectErr bool
	}{
		{
			name:      "nil config",
			cfg:       nil,
			expectErr: true,
		},
		{
			name:      "empty config uses defaults",
			cfg:       &config.LoggingConfig{},
			expectErr: false,
		},
		{
			name:      "json format",
			cfg:       &config.LoggingConfig{Level: "info", Format: "json"},
			expectErr: false,
		},
		{
			name:      "text format",
			cfg:       &config.LoggingConfig{Level: "debug", Format: "text"},
			expectErr: false,
		},
		{
			name:      "invalid level",
			cfg:       &config.LoggingConfig{Level: "verbose", Format: "json"},
			expectErr: true,
		},
		{
			name:      "invalid format",
			cfg:       &config.LoggingConfig{Level: "info", Format: "xml"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, &bytes.Buffer{})

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

// TestNew_JSONOutput tests that the JSON handler emits parseable records.
func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("suggestion generated", "provider", "flowise", "used_rag", true)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if record["msg"] != "suggestion generated" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "INFO" {
		t.Errorf("level = %v", record["level"])
	}
	if record["provider"] != "flowise" {
		t.Errorf("provider = %v", record["provider"])
	}
	if record["used_rag"] != true {
		t.Errorf("used_rag = %v", record["used_rag"])
	}
}

// TestNew_TextOutput tests that the text handler emits key=value records.
func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("provider switched", "kind", "openrouter")

	out := buf.String()
	if !strings.Contains(out, `msg="provider switched"`) {
		t.Errorf("missing message in output: %q", out)
	}
	if !strings.Contains(out, "kind=openrouter") {
		t.Errorf("missing attribute in output: %q", out)
	}
}

// TestNew_LevelFiltering tests that records below the configured level are dropped.
func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("expected info and debug to be filtered, got %q", buf.String())
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("expected warn message in output, got %q", buf.String())
	}
}

// TestNew_AddSource tests that source locations appear when enabled.
func TestNew_AddSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "json", AddSource: true}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("with source")

	if !strings.Contains(buf.String(), `"source"`) {
		t.Errorf("expected source attribute in output, got %q", buf.String())
	}
}

// TestParseLevel tests log level parsing.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		expected  slog.Level
		expectErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if level != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, level)
			}
		})
	}
}

// TestParseFormat tests log format parsing.
func TestParseFormat(t *testing.T) {
	tests := []struct {
		input     string
		expected  LogFormat
		expectErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"", FormatJSON, false},
		{"text", FormatText, false},
		{"TEXT", FormatText, false},
		{"xml", FormatJSON, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := ParseFormat(tt.input)

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.expected {
				t.Errorf("expected format %v, got %v", tt.expected, format)
			}
		})
	}
}
