package suggest

import (
	"strings"
	"testing"
)

func TestSelectApologyDeterministic(t *testing.T) {
	transcript := "Customer: my package never arrived"
	first := SelectApology(transcript)
	for i := 0; i < 10; i++ {
		if got := SelectApology(transcript); got != first {
			t.Fatalf("selection flapped: %q then %q", first, got)
		}
	}
}

func TestSelectApologyKeyedByLength(t *testing.T) {
	a := SelectApology(strings.Repeat("a", 37))
	b := SelectApology(strings.Repeat("b", 37))
	if a != b {
		t.Errorf("equal-length transcripts got different apologies: %q vs %q", a, b)
	}

	// Consecutive lengths walk the list in order and wrap around.
	cycle := len(apologies)
	for i := 0; i < cycle*2; i++ {
		got := SelectApology(strings.Repeat("x", i))
		want := apologies[i%cycle]
		if got != want {
			t.Fatalf("length %d selected %q, want %q", i, got, want)
		}
	}
}

func TestSelectApologyNeverEmpty(t *testing.T) {
	for i, a := range apologies {
		if strings.TrimSpace(a) == "" {
			t.Errorf("apology %d is blank", i)
		}
	}
	if SelectApology("") == "" {
		t.Error("empty transcript must still select an apology")
	}
}
