package models

// Chunk represents a bounded slice of source text prepared for indexing.
type Chunk struct {
	Text          string
	SourceID      string
	SequenceIndex int
	Metadata      map[string]string
}

// ScoredItem is one stored item returned from a similarity query,
// normalized at the store boundary so the rest of the system never
// sees the vector index's own result shape.
type ScoredItem struct {
	ID       string
	Text     string
	Metadata map[string]string
	// Distance is 1 - cosine similarity; lower means more similar.
	Distance float32
}

// QueryResult is a ranked sequence of scored items, ordered by
// non-decreasing distance. Empty when nothing relevant is stored.
type QueryResult []ScoredItem

// Texts returns the item texts in rank order.
func (r QueryResult) Texts() []string {
	out := make([]string, len(r))
	for i, item := range r {
		out[i] = item.Text
	}
	return out
}

// GenerationParams are the tunables forwarded to the generation service.
type GenerationParams struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultGenerationParams mirrors the upstream defaults used for
// timetable generation.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{Temperature: 0.7, TopP: 0.95, MaxTokens: 4096}
}
