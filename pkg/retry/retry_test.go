package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordedSleep captures requested backoff delays without waiting.
func recordedSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoExactInvocationCount(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
	}{
		{name: "single attempt", maxRetries: 1},
		{name: "default three attempts", maxRetries: 3},
		{name: "five attempts", maxRetries: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delays []time.Duration
			calls := 0
			wantErr := errors.New("persistent failure")

			_, err := Do(context.Background(), Config{
				MaxRetries: tt.maxRetries,
				BaseDelay:  time.Millisecond,
				Sleep:      recordedSleep(&delays),
			}, func(ctx context.Context) (string, error) {
				calls++
				return "", wantErr
			})

			if calls != tt.maxRetries {
				t.Errorf("expected exactly %d invocations, got %d", tt.maxRetries, calls)
			}
			if !errors.Is(err, wantErr) {
				t.Errorf("expected final error %v, got %v", wantErr, err)
			}
			if len(delays) != tt.maxRetries-1 {
				t.Errorf("expected %d sleeps, got %d", tt.maxRetries-1, len(delays))
			}
		})
	}
}

func TestDoBackoffSequence(t *testing.T) {
	var delays []time.Duration

	_, _ = Do(context.Background(), Config{
		MaxRetries: 4,
		BaseDelay:  2 * time.Second,
		Sleep:      recordedSleep(&delays),
	}, func(ctx context.Context) (int, error) {
		return 0, errors.New("fail")
	})

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d delays, got %d", len(want), len(delays))
	}
	for i, d := range want {
		if delays[i] != d {
			t.Errorf("delay %d: expected %s, got %s", i, d, delays[i])
		}
	}
}

func TestDoSucceedsMidway(t *testing.T) {
	calls := 0

	result, err := Do(context.Background(), Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result %q, got %q", "ok", result)
	}
	if calls != 2 {
		t.Errorf("expected 2 invocations, got %d", calls)
	}
}

func TestDoFirstAttemptHasNoDelay(t *testing.T) {
	var delays []time.Duration

	_, err := Do(context.Background(), Config{
		MaxRetries: 3,
		Sleep:      recordedSleep(&delays),
	}, func(ctx context.Context) (string, error) {
		return "immediate", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delays) != 0 {
		t.Errorf("expected no sleeps for an immediately successful op, got %d", len(delays))
	}
}

func TestDoRetryIfStopsEarly(t *testing.T) {
	permanent := errors.New("permanent failure")
	calls := 0

	_, err := Do(context.Background(), Config{
		MaxRetries: 5,
		BaseDelay:  time.Millisecond,
		Sleep:      func(context.Context, time.Duration) error { return nil },
		RetryIf:    func(err error) bool { return !errors.Is(err, permanent) },
	}, func(ctx context.Context) (string, error) {
		calls++
		return "", permanent
	})

	if calls != 1 {
		t.Errorf("expected permanent error to stop after 1 invocation, got %d", calls)
	}
	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error back, got %v", err)
	}
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, Config{
		MaxRetries: 3,
		BaseDelay:  10 * time.Second,
	}, func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected cancellation before the second attempt, got %d invocations", calls)
	}
}

func TestDoAppliesDefaults(t *testing.T) {
	var delays []time.Duration
	calls := 0

	_, _ = Do(context.Background(), Config{
		Sleep: recordedSleep(&delays),
	}, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("fail")
	})

	if calls != DefaultMaxRetries {
		t.Errorf("expected %d default invocations, got %d", DefaultMaxRetries, calls)
	}
	if len(delays) == 0 || delays[0] != DefaultBaseDelay {
		t.Errorf("expected first delay %s, got %v", DefaultBaseDelay, delays)
	}
}
