package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"studybuddy/internal/apperr"
	"studybuddy/internal/models"
)

type slowGenerator struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowGenerator) Generate(ctx context.Context, _ string, _ models.GenerationParams) (string, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	select {
	case <-time.After(s.delay):
		return "ok", nil
	case <-ctx.Done():
		return "", apperr.Wrap(apperr.UpstreamUnavailable, ctx.Err(), "generation service unreachable")
	}
}

func TestWithLimit_CapsConcurrency(t *testing.T) {
	inner := &slowGenerator{delay: 20 * time.Millisecond}
	gen := withLimit(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gen.Generate(context.Background(), "p", models.GenerationParams{}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := inner.peak.Load(); peak > 2 {
		t.Errorf("concurrency cap exceeded: peak %d", peak)
	}
}

func TestWithTimeout_BoundsSlowCalls(t *testing.T) {
	gen := withTimeout(&slowGenerator{delay: time.Second}, 10*time.Millisecond)
	_, err := gen.Generate(context.Background(), "p", models.GenerationParams{})
	if apperr.KindOf(err) != apperr.UpstreamUnavailable {
		t.Fatalf("expected upstream_unavailable, got %v", err)
	}
}
