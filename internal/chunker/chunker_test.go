package chunker

import (
	"strings"
	"testing"

	"studybuddy/internal/apperr"
)

func TestSplit_EmptyInput(t *testing.T) {
	chunks, err := Split("", 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected zero chunks for empty input, got %d", len(chunks))
	}
}

func TestSplit_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name     string
		maxSize  int
		overlap  int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split("some text", tc.maxSize, tc.overlap)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	text := "short note"
	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected %q, got %q", text, chunks[0].Text)
	}
}

func TestSplit_BoundsAndOverlap(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Text) > 1000 {
			t.Errorf("chunk %d exceeds max size: %d", i, len(c.Text))
		}
		if c.SequenceIndex != i {
			t.Errorf("chunk %d has sequence index %d", i, c.SequenceIndex)
		}
	}
	// Consecutive chunks share exactly the declared overlap.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		tail := prev[len(prev)-200:]
		if !strings.HasPrefix(chunks[i].Text, tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's overlap", i)
		}
	}
}

func TestSplit_Reconstructs(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 900) + strings.Repeat("b", 900),
		strings.Repeat("sentence one. sentence two.\nparagraph break.\n\n", 120),
		"tiny",
		strings.Repeat("x", 2500),
	}
	for _, text := range inputs {
		chunks, err := Split(text, 1000, 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := Join(chunks, 200); got != text {
			t.Errorf("reconstruction mismatch: got %d bytes, want %d", len(got), len(text))
		}
	}
}

func TestSplit_Idempotent(t *testing.T) {
	text := strings.Repeat("deterministic input never changes its chunking. ", 60)
	first, err := Split(text, 500, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Split(text, 500, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

// Worst case for termination: no natural boundary anywhere.
func TestSplit_TerminatesWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("z", 50_000)
	chunks, err := Split(text, 1000, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if got := Join(chunks, 999); got != text {
		t.Error("reconstruction mismatch for dense overlap")
	}
}
