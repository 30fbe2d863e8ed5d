// Package llm holds the generation clients. Each implementation makes
// a single attempt per call; retries are the caller's decision and
// none are configured anywhere in this repo.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"studybuddy/internal/apperr"
	"studybuddy/internal/config"
	"studybuddy/internal/models"
)

// Generator sends an assembled prompt to a hosted model and returns
// the generated text verbatim. Output is opaque; nothing downstream
// validates its shape.
type Generator interface {
	Generate(ctx context.Context, prompt string, params models.GenerationParams) (string, error)
}

// New builds the configured generator, wrapped with the call timeout
// and, when cfg.RAG.MaxConcurrent is set, a cap on simultaneous
// upstream calls.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	var gen Generator
	var err error
	switch cfg.GenLLM.Provider {
	case "gemini":
		gen, err = NewGemini(ctx, &cfg.GenLLM)
	case "openai":
		gen, err = NewOpenAI(&cfg.GenLLM)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.GenLLM.Provider)
	}
	if err != nil {
		return nil, err
	}
	gen = withTimeout(gen, cfg.GenLLM.Timeout)
	if cfg.RAG.MaxConcurrent > 0 {
		gen = withLimit(gen, cfg.RAG.MaxConcurrent)
	}
	return gen, nil
}

// classify maps a transport-level failure to the error taxonomy.
func classify(err error, upstream string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, upstream+" unreachable")
	}
	return apperr.Wrap(apperr.UpstreamRejected, err, upstream+" rejected the request")
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// withTimeout bounds every upstream call; worst-case latency of the
// generation service is otherwise unbounded.
func withTimeout(next Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, timeout: timeout}
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string, params models.GenerationParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Generate(ctx, prompt, params)
}

type limitedGenerator struct {
	next Generator
	sem  chan struct{}
}

// withLimit caps simultaneous generation calls so a burst of requests
// cannot exhaust the upstream quota.
func withLimit(next Generator, n int) Generator {
	return &limitedGenerator{next: next, sem: make(chan struct{}, n)}
}

func (g *limitedGenerator) Generate(ctx context.Context, prompt string, params models.GenerationParams) (string, error) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return "", apperr.Wrap(apperr.UpstreamUnavailable, ctx.Err(), "waiting for a generation slot")
	}
	defer func() { <-g.sem }()
	return g.next.Generate(ctx, prompt, params)
}
