// Package retriever fans a query out across collections and collects
// per-collection results. A degraded collection costs its own context
// only; generation still proceeds with whatever succeeded.
package retriever

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"studybuddy/internal/models"
	"studybuddy/internal/store"
)

// Result is what one collection contributed: items on success, the
// error otherwise. Never both.
type Result struct {
	Items models.QueryResult
	Err   error
}

// Retrieve queries each collection independently and concurrently and
// returns one Result per collection name. It never fails as a whole;
// callers inspect per-collection errors and decide whether partial
// context is acceptable.
func Retrieve(ctx context.Context, collections []*store.Collection, queryText string, k int) map[string]Result {
	results := make(map[string]Result, len(collections))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, col := range collections {
		wg.Add(1)
		go func(col *store.Collection) {
			defer wg.Done()
			items, err := col.Query(ctx, queryText, k)
			if err != nil {
				log.Warn().Err(err).Str("collection", col.Name()).Msg("retrieval degraded, continuing without this collection")
			}
			mu.Lock()
			results[col.Name()] = Result{Items: items, Err: err}
			mu.Unlock()
		}(col)
	}
	wg.Wait()
	return results
}

// One queries a single collection and returns its items, or nil items
// on failure. Convenience for flows that only degrade, never fail, on
// missing context.
func One(ctx context.Context, col *store.Collection, queryText string, k int) models.QueryResult {
	res := Retrieve(ctx, []*store.Collection{col}, queryText, k)[col.Name()]
	return res.Items
}
