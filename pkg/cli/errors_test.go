package cli

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{
			name:  "with field path",
			field: "telemetry.logging",
			want:  "config error in telemetry.logging: missing required field",
		},
		{
			name:  "without field path",
			field: "",
			want:  "config error: missing required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigError(tt.field, "missing required field")
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("listen tcp: address already in use")
	err := NewCommandError("run", cause)

	want := "command run failed: listen tcp: address already in use"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	var cmdErr *CommandError
	if !errors.As(error(err), &cmdErr) {
		t.Fatal("errors.As failed to match *CommandError")
	}
	if cmdErr.Command != "run" {
		t.Errorf("Command = %q, want %q", cmdErr.Command, "run")
	}
}
