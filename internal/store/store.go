// Package store adapts the chromem-go vector index into the knowledge
// store the assistants read and write. Collections are named
// partitions; a query never crosses collections.
package store

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/philippgille/chromem-go"

	"studybuddy/internal/apperr"
	"studybuddy/internal/models"
)

// EmbeddingFunc turns text into a vector. It matches
// chromem.EmbeddingFunc so langchaingo embedders plug in directly.
type EmbeddingFunc = chromem.EmbeddingFunc

// Store owns the backing chromem database.
type Store struct {
	db *chromem.DB
}

// Open initializes the vector database at path, or purely in memory
// when inMemory is set (tests and dry runs).
func Open(path string, inMemory bool) (*Store, error) {
	if inMemory {
		return &Store{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, fmt.Sprintf("opening vector database at %s", path))
	}
	return &Store{db: db}, nil
}

// Collection returns the named collection, creating it if needed.
// Calling it twice with the same name yields the same logical
// collection.
func (s *Store) Collection(name string, embed EmbeddingFunc) (*Collection, error) {
	c, err := s.db.GetOrCreateCollection(name, nil, embed)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, fmt.Sprintf("opening collection %s", name))
	}
	return &Collection{name: name, col: c}, nil
}

// Collection is a handle on one named partition of stored items.
type Collection struct {
	name string
	col  *chromem.Collection
}

func (c *Collection) Name() string { return c.name }

// Insert embeds and stores one item per chunk under the given ids.
// Ids must pair up with chunks and be unique within the batch;
// re-inserting an id that already exists in the collection overwrites
// the stored item (chromem upsert semantics).
func (c *Collection) Insert(ctx context.Context, chunks []models.Chunk, ids []string) error {
	if len(chunks) != len(ids) {
		return apperr.New(apperr.Validation, "got %d chunks but %d ids", len(chunks), len(ids))
	}
	if len(chunks) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return apperr.New(apperr.Validation, "empty item id")
		}
		if _, dup := seen[id]; dup {
			return apperr.New(apperr.Validation, "duplicate item id %q in batch", id)
		}
		seen[id] = struct{}{}
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:       ids[i],
			Content:  chunk.Text,
			Metadata: chunk.Metadata,
		}
	}
	if err := c.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, fmt.Sprintf("inserting into collection %s", c.name))
	}
	return nil
}

// Query returns up to k stored items most similar to text, ordered by
// ascending distance. Fewer than k items are returned when the
// collection holds fewer; an empty collection yields an empty result.
func (c *Collection) Query(ctx context.Context, text string, k int) (models.QueryResult, error) {
	if k <= 0 {
		return nil, apperr.New(apperr.Validation, "result count must be positive, got %d", k)
	}
	// chromem rejects nResults larger than the collection.
	if n := c.col.Count(); n < k {
		k = n
	}
	if k == 0 {
		return models.QueryResult{}, nil
	}

	results, err := c.col.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, fmt.Sprintf("querying collection %s", c.name))
	}

	items := make(models.QueryResult, len(results))
	for i, r := range results {
		items[i] = models.ScoredItem{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: r.Metadata,
			Distance: 1 - r.Similarity,
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Distance < items[j].Distance })
	return items, nil
}

// Count reports the number of stored items in the collection.
func (c *Collection) Count() int { return c.col.Count() }
