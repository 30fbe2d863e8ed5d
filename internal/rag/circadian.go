package rag

import (
	"context"
	"fmt"
	"strconv"

	"studybuddy/internal/apperr"
	"studybuddy/internal/chunker"
	"studybuddy/internal/config"
	"studybuddy/internal/llm"
	"studybuddy/internal/models"
	"studybuddy/internal/parser"
	"studybuddy/internal/prompt"
	"studybuddy/internal/retriever"
	"studybuddy/internal/store"
)

// CircadianCollection names the wellness knowledge base.
const CircadianCollection = "circadian_knowledge"

// Circadian is the screen-time and sleep-rhythm advisor.
type Circadian struct {
	knowledge *store.Collection
	gen       llm.Generator
	cfg       config.RAGConfig
}

func NewCircadian(knowledge *store.Collection, gen llm.Generator, cfg config.RAGConfig) *Circadian {
	return &Circadian{knowledge: knowledge, gen: gen, cfg: cfg}
}

// Analysis is a wellness recommendation plus the metadata of the
// knowledge chunks it was grounded on.
type Analysis struct {
	Recommendation string
	Sources        []map[string]string
}

// Analyze retrieves circadian knowledge relevant to the complaint and
// generates focused advice. Generation runs with low temperature and a
// small output cap.
func (c *Circadian) Analyze(ctx context.Context, text string, screenTime int, currentTime string) (*Analysis, error) {
	if text == "" {
		return nil, apperr.New(apperr.Validation, "text must not be empty")
	}

	items := retriever.One(ctx, c.knowledge, text, 3)

	tmpl, err := prompt.ByTag(prompt.TagWellnessAdvice)
	if err != nil {
		return nil, err
	}
	p := prompt.Assemble(tmpl, text, items.Texts(), map[string]string{
		"current_time": currentTime,
		"screen_time":  strconv.Itoa(screenTime),
	}, c.cfg.MaxPromptChars)

	recommendation, err := c.gen.Generate(ctx, p, models.GenerationParams{
		Temperature: 0.3,
		TopP:        0.8,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, err
	}

	sources := make([]map[string]string, len(items))
	for i, item := range items {
		sources[i] = item.Metadata
	}
	return &Analysis{Recommendation: recommendation, Sources: sources}, nil
}

// Ingest chunks an uploaded document into the knowledge base and
// reports how many chunks were stored and the collection total.
func (c *Circadian) Ingest(ctx context.Context, filename string, data []byte) (stored, total int, err error) {
	text, err := parser.Extract(data, filename)
	if err != nil {
		return 0, 0, err
	}
	chunks, err := chunker.Split(text, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
	if err != nil {
		return 0, 0, err
	}
	if len(chunks) == 0 {
		return 0, 0, apperr.New(apperr.Validation, "document %q contains no extractable text", filename)
	}

	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = fmt.Sprintf("doc_%d_%s", i, filename)
		chunks[i].SourceID = filename
		chunks[i].Metadata = map[string]string{
			"source":       filename,
			"chunk":        strconv.Itoa(i),
			"total_chunks": strconv.Itoa(len(chunks)),
		}
	}
	if err := c.knowledge.Insert(ctx, chunks, ids); err != nil {
		return 0, 0, err
	}
	return len(chunks), c.knowledge.Count(), nil
}

// Count reports the size of the knowledge base.
func (c *Circadian) Count() int { return c.knowledge.Count() }
