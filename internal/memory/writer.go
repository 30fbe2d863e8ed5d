// Package memory writes generated artifacts and user feedback back
// into the knowledge store, closing the retrieval feedback loop. The
// model is append-only: a rating on a past artifact is a new item
// pointing at the original, never an in-place update.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"studybuddy/internal/models"
	"studybuddy/internal/store"
)

// lastStamp makes ids monotonic even when two writes land in the same
// nanosecond tick.
var lastStamp atomic.Int64

func stamp() int64 {
	for {
		now := time.Now().UnixNano()
		last := lastStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

// Record inserts one new item holding artifact under a fresh id of the
// form "<prefix>_<timestamp>" and returns that id. It never touches
// existing items.
func Record(ctx context.Context, col *store.Collection, artifact, prefix string, metadata map[string]string) (string, error) {
	id := fmt.Sprintf("%s_%d", prefix, stamp())
	chunk := models.Chunk{
		Text:     artifact,
		SourceID: id,
		Metadata: metadata,
	}
	if err := col.Insert(ctx, []models.Chunk{chunk}, []string{id}); err != nil {
		return "", err
	}
	log.Debug().Str("collection", col.Name()).Str("id", id).Msg("memory recorded")
	return id, nil
}
