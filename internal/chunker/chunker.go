// Package chunker splits raw text into overlapping windows for
// embedding and retrieval.
package chunker

import (
	"studybuddy/internal/apperr"
	"studybuddy/internal/models"
)

const (
	DefaultMaxSize = 1000
	DefaultOverlap = 200
)

// Split cuts text into chunks of at most maxSize characters where each
// chunk after the first starts exactly overlap characters before the
// end of its predecessor. Chunk ends prefer a nearby space, newline or
// period (looking back at most a tenth of the window) and fall back to
// a hard character boundary, so joining chunks[0] with every later
// chunk minus its leading overlap reproduces the input byte for byte.
// Empty input yields no chunks.
func Split(text string, maxSize, overlap int) ([]models.Chunk, error) {
	if maxSize <= 0 {
		return nil, apperr.New(apperr.Validation, "chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 {
		return nil, apperr.New(apperr.Validation, "chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= maxSize {
		return nil, apperr.New(apperr.Validation, "chunk overlap %d must be smaller than chunk size %d", overlap, maxSize)
	}
	if len(text) == 0 {
		return nil, nil
	}

	var chunks []models.Chunk
	start := 0
	for {
		end := start + maxSize
		if end >= len(text) {
			chunks = append(chunks, models.Chunk{Text: text[start:], SequenceIndex: len(chunks)})
			return chunks, nil
		}

		end = breakPoint(text, start, end, overlap)
		chunks = append(chunks, models.Chunk{Text: text[start:end], SequenceIndex: len(chunks)})
		start = end - overlap
	}
}

// breakPoint looks for a clean break within the last tenth of the
// window, like the page chunker does for parsed documents. The
// adjusted end must still leave the next start past the current one,
// otherwise the hard boundary wins.
func breakPoint(text string, start, end, overlap int) int {
	lookBack := (end - start) / 10
	for i := end - 1; i >= end-lookBack && i-overlap > start; i-- {
		switch text[i] {
		case ' ', '\n', '.':
			return i + 1
		}
	}
	return end
}

// Join reverses Split for chunks produced with the given overlap.
func Join(chunks []models.Chunk, overlap int) string {
	var out []byte
	for i, c := range chunks {
		if i == 0 {
			out = append(out, c.Text...)
			continue
		}
		if len(c.Text) > overlap {
			out = append(out, c.Text[overlap:]...)
		}
	}
	return string(out)
}
