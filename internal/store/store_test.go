package store

import (
	"context"
	"math"
	"strings"
	"testing"

	"studybuddy/internal/apperr"
	"studybuddy/internal/models"
)

// letterFreq is a deterministic stand-in for a real embedding service:
// a normalized letter-frequency vector. Identical text embeds
// identically, so similarity ranking is predictable.
func letterFreq(_ context.Context, text string) ([]float32, error) {
	var counts [26]float32
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			counts[r-'a']++
		}
	}
	var norm float64
	for _, c := range counts {
		norm += float64(c) * float64(c)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	vec := make([]float32, 26)
	for i, c := range counts {
		vec[i] = float32(float64(c) / norm)
	}
	return vec, nil
}

func newTestCollection(t *testing.T, name string) *Collection {
	t.Helper()
	s, err := Open("", true)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	col, err := s.Collection(name, letterFreq)
	if err != nil {
		t.Fatalf("opening collection: %v", err)
	}
	return col
}

func insert(t *testing.T, col *Collection, texts ...string) {
	t.Helper()
	chunks := make([]models.Chunk, len(texts))
	ids := make([]string, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{Text: text}
		ids[i] = "item_" + string(rune('a'+i))
	}
	if err := col.Insert(context.Background(), chunks, ids); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestCollection_Idempotent(t *testing.T) {
	s, err := Open("", true)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	first, err := s.Collection("memory", letterFreq)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	insert(t, first, "stored once")

	second, err := s.Collection("memory", letterFreq)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if second.Count() != 1 {
		t.Errorf("expected same logical collection with 1 item, got %d", second.Count())
	}
}

func TestInsert_LengthMismatch(t *testing.T) {
	col := newTestCollection(t, "mismatch")
	err := col.Insert(context.Background(), []models.Chunk{{Text: "x"}, {Text: "y"}}, []string{"only-one"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInsert_DuplicateIDInBatch(t *testing.T) {
	col := newTestCollection(t, "dups")
	err := col.Insert(context.Background(), []models.Chunk{{Text: "x"}, {Text: "y"}}, []string{"same", "same"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuery_InvalidK(t *testing.T) {
	col := newTestCollection(t, "kcheck")
	for _, k := range []int{0, -3} {
		if _, err := col.Query(context.Background(), "anything", k); !apperr.IsValidation(err) {
			t.Errorf("k=%d: expected validation error, got %v", k, err)
		}
	}
}

func TestEmptyCollection(t *testing.T) {
	col := newTestCollection(t, "empty")
	if col.Count() != 0 {
		t.Errorf("expected count 0, got %d", col.Count())
	}
	result, err := col.Query(context.Background(), "nothing here", 5)
	if err != nil {
		t.Fatalf("query on empty collection should not fail: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected empty result, got %d items", len(result))
	}
}

func TestQuery_BoundedAndOrdered(t *testing.T) {
	col := newTestCollection(t, "ordered")
	insert(t, col, "alpha alpha alpha", "bravo bravo", "charlie", "delta delta")

	result, err := col.Query(context.Background(), "alpha", 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(result) > 3 {
		t.Errorf("got %d results for k=3", len(result))
	}
	for i := 1; i < len(result); i++ {
		if result[i].Distance < result[i-1].Distance {
			t.Errorf("results not ordered by ascending distance at %d", i)
		}
	}
}

func TestQuery_KLargerThanCollection(t *testing.T) {
	col := newTestCollection(t, "clamped")
	insert(t, col, "one", "two")
	result, err := col.Query(context.Background(), "one", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("expected 2 results, got %d", len(result))
	}
}

// Exact-text query must rank the matching chunk first with the
// minimum distance among everything stored.
func TestQuery_ExactMatchWins(t *testing.T) {
	col := newTestCollection(t, "exact")
	chunk1 := strings.Repeat("a", 900)
	chunk2 := strings.Repeat("b", 900)
	insert(t, col, chunk1, chunk2)

	result, err := col.Query(context.Background(), chunk1, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 result, got %d", len(result))
	}
	if result[0].Text != chunk1 {
		t.Errorf("expected the identical chunk to rank first")
	}
	all, err := col.Query(context.Background(), chunk1, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, item := range all {
		if item.Distance < result[0].Distance {
			t.Errorf("top-1 distance %f is not the minimum (saw %f)", result[0].Distance, item.Distance)
		}
	}
}

func TestInsert_Overwrite(t *testing.T) {
	col := newTestCollection(t, "overwrite")
	ctx := context.Background()
	if err := col.Insert(ctx, []models.Chunk{{Text: "first version"}}, []string{"fixed-id"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := col.Insert(ctx, []models.Chunk{{Text: "second version"}}, []string{"fixed-id"}); err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if col.Count() != 1 {
		t.Errorf("duplicate id should overwrite, count=%d", col.Count())
	}
}
