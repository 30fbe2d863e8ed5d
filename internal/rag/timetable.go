// Package rag wires retrieval, prompt assembly, generation and memory
// write-back into the two assistants.
package rag

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"studybuddy/internal/apperr"
	"studybuddy/internal/chunker"
	"studybuddy/internal/config"
	"studybuddy/internal/llm"
	"studybuddy/internal/memory"
	"studybuddy/internal/models"
	"studybuddy/internal/parser"
	"studybuddy/internal/prompt"
	"studybuddy/internal/retriever"
	"studybuddy/internal/store"
)

// Collection names of the timetable assistant.
const (
	TimetableMemoryCollection = "timetable_memory"
	StudyMaterialsCollection  = "study_materials"
)

const (
	etfKnowledgeQuery = "ABCDE method priority eat that frog Brian Tracy"
	etfScheduleQuery  = "eat that frog first thing morning productivity"
	etfPatternsQuery  = "frog completed productivity pattern"
	etfTipsQuery      = "Brian Tracy productivity tips morning routine"
)

// Timetable is the Eat-That-Frog study scheduling assistant.
type Timetable struct {
	memory    *store.Collection
	materials *store.Collection
	gen       llm.Generator
	cfg       config.RAGConfig

	// Now is swappable so tests pin the date in prompts.
	Now func() time.Time
}

func NewTimetable(memoryCol, materialsCol *store.Collection, gen llm.Generator, cfg config.RAGConfig) *Timetable {
	return &Timetable{
		memory:    memoryCol,
		materials: materialsCol,
		gen:       gen,
		cfg:       cfg,
		Now:       time.Now,
	}
}

// GenerateResult is a generated timetable plus the memory id it was
// recorded under, so the caller can rate it later.
type GenerateResult struct {
	Timetable   string
	TimetableID string
}

// Generate runs the full loop: retrieve past timetables and ETF
// principles, assemble, generate, then write the artifact back into
// timetable memory. Nothing is written when generation fails.
func (t *Timetable) Generate(ctx context.Context, query string) (*GenerateResult, error) {
	if query == "" {
		return nil, apperr.New(apperr.Validation, "query must not be empty")
	}

	results := retriever.Retrieve(ctx, []*store.Collection{t.memory}, query, t.cfg.TopK)
	blocks := results[t.memory.Name()].Items.Texts()
	blocks = append(blocks, retriever.One(ctx, t.materials, etfScheduleQuery, 3).Texts()...)

	tmpl, err := prompt.ByTag(prompt.TagTimetable)
	if err != nil {
		return nil, err
	}
	p := prompt.Assemble(tmpl, query, blocks, map[string]string{
		"today": t.Now().Format("Monday, January 2, 2006"),
	}, t.cfg.MaxPromptChars)

	timetable, err := t.gen.Generate(ctx, p, models.DefaultGenerationParams())
	if err != nil {
		return nil, err
	}

	artifact := fmt.Sprintf("Query: %s\nGenerated Timetable: %s", query, head(timetable, 500))
	id, err := memory.Record(ctx, t.memory, artifact, "timetable", map[string]string{
		"type":   "generated_timetable",
		"query":  query,
		"date":   t.Now().Format(time.RFC3339),
		"rating": "0",
	})
	if err != nil {
		// The caller still gets their timetable; only future retrieval
		// quality suffers.
		log.Warn().Err(err).Msg("timetable generated but not recorded")
		return &GenerateResult{Timetable: timetable}, nil
	}
	return &GenerateResult{Timetable: timetable, TimetableID: id}, nil
}

// IdentifyFrogs triages the user's tasks with the ABCDE method.
func (t *Timetable) IdentifyFrogs(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", apperr.New(apperr.Validation, "query must not be empty")
	}
	blocks := retriever.One(ctx, t.materials, etfKnowledgeQuery, 3).Texts()

	tmpl, err := prompt.ByTag(prompt.TagPriorityTriage)
	if err != nil {
		return "", err
	}
	p := prompt.Assemble(tmpl, query, blocks, nil, t.cfg.MaxPromptChars)
	return t.gen.Generate(ctx, p, models.DefaultGenerationParams())
}

// Recommendations generates ETF advice from the user's completion
// patterns plus stored principles.
func (t *Timetable) Recommendations(ctx context.Context) (string, error) {
	blocks := retriever.One(ctx, t.memory, etfPatternsQuery, 5).Texts()
	blocks = append(blocks, retriever.One(ctx, t.materials, etfTipsQuery, 3).Texts()...)

	tmpl, err := prompt.ByTag(prompt.TagRecommendations)
	if err != nil {
		return "", err
	}
	p := prompt.Assemble(tmpl, "", blocks, nil, t.cfg.MaxPromptChars)
	return t.gen.Generate(ctx, p, models.DefaultGenerationParams())
}

// UploadMaterial chunks an uploaded document into study_materials.
func (t *Timetable) UploadMaterial(ctx context.Context, filename, subject string, data []byte) (int, error) {
	if subject == "" {
		subject = "general"
	}
	text, err := parser.Extract(data, filename)
	if err != nil {
		return 0, err
	}
	chunks, err := chunker.Split(text, t.cfg.ChunkSize, t.cfg.ChunkOverlap)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, apperr.New(apperr.Validation, "document %q contains no extractable text", filename)
	}

	uploadID := uuid.NewString()
	uploadDate := t.Now().Format(time.RFC3339)
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = fmt.Sprintf("%s_%s_%d_%s", filename, subject, i, uploadID)
		chunks[i].SourceID = uploadID
		chunks[i].Metadata = map[string]string{
			"type":        "study_material",
			"subject":     subject,
			"filename":    filename,
			"chunk":       strconv.Itoa(i),
			"upload_date": uploadDate,
		}
	}
	if err := t.materials.Insert(ctx, chunks, ids); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// AddNote stores a free-text study note.
func (t *Timetable) AddNote(ctx context.Context, note, subject, topic string) (string, error) {
	if note == "" {
		return "", apperr.New(apperr.Validation, "note must not be empty")
	}
	if subject == "" {
		subject = "general"
	}
	return memory.Record(ctx, t.materials, note, "note_"+subject, map[string]string{
		"type":    "study_note",
		"subject": subject,
		"topic":   topic,
		"date":    t.Now().Format(time.RFC3339),
	})
}

// SearchMaterials runs a ranked similarity search over study materials.
func (t *Timetable) SearchMaterials(ctx context.Context, query string, n int) (models.QueryResult, error) {
	if query == "" {
		return nil, apperr.New(apperr.Validation, "query must not be empty")
	}
	if n <= 0 {
		n = t.cfg.TopK
	}
	return t.materials.Query(ctx, query, n)
}

// Rate records feedback on a past timetable as a new memory item
// referencing the original id. Ratings are facts about timetables, not
// fields on them.
func (t *Timetable) Rate(ctx context.Context, timetableID string, rating int, feedback string) (string, error) {
	if timetableID == "" {
		return "", apperr.New(apperr.Validation, "timetable_id must not be empty")
	}
	if rating < 1 || rating > 5 {
		return "", apperr.New(apperr.Validation, "rating must be between 1 and 5, got %d", rating)
	}
	artifact := fmt.Sprintf("Timetable feedback: Rating %d/5. %s", rating, feedback)
	return memory.Record(ctx, t.memory, artifact, "feedback_"+timetableID, map[string]string{
		"type":         "timetable_feedback",
		"timetable_id": timetableID,
		"rating":       strconv.Itoa(rating),
		"feedback":     feedback,
		"date":         t.Now().Format(time.RFC3339),
	})
}

// CompleteFrog records a finished important task for momentum tracking.
func (t *Timetable) CompleteFrog(ctx context.Context, taskName, completionTime string, difficulty int, notes string) (string, error) {
	if taskName == "" {
		return "", apperr.New(apperr.Validation, "task_name must not be empty")
	}
	now := t.Now()
	artifact := fmt.Sprintf("FROG COMPLETED: %s at %s. Difficulty: %d/10. Notes: %s", taskName, completionTime, difficulty, notes)
	return memory.Record(ctx, t.memory, artifact, "frog_done", map[string]string{
		"type":              "frog_completion",
		"task_name":         taskName,
		"completion_time":   completionTime,
		"difficulty_actual": strconv.Itoa(difficulty),
		"notes":             notes,
		"date":              now.Format(time.RFC3339),
		"day_of_week":       now.Weekday().String(),
	})
}

// FrogReport lists recently completed frogs.
func (t *Timetable) FrogReport(ctx context.Context) (models.QueryResult, error) {
	return t.memory.Query(ctx, "frog completed task", 10)
}

// Stats summarizes what both collections currently hold.
type Stats struct {
	TimetableCount int
	MaterialsCount int
	Recent         models.QueryResult
}

func (t *Timetable) MemoryStats(ctx context.Context) Stats {
	return Stats{
		TimetableCount: t.memory.Count(),
		MaterialsCount: t.materials.Count(),
		Recent:         retriever.One(ctx, t.memory, "recent timetable", 3),
	}
}

// AddPreference stores a standing user preference for future
// retrieval, e.g. best_study_time = 9AM-11AM.
func (t *Timetable) AddPreference(ctx context.Context, prefType, prefValue, description string) (string, error) {
	if prefType == "" || prefValue == "" {
		return "", apperr.New(apperr.Validation, "preference_type and preference_value are required")
	}
	artifact := fmt.Sprintf("User preference: %s = %s. %s", prefType, prefValue, description)
	return memory.Record(ctx, t.memory, artifact, "pref_"+prefType, map[string]string{
		"type":             "user_preference",
		"preference_type":  prefType,
		"preference_value": prefValue,
		"description":      description,
		"date":             t.Now().Format(time.RFC3339),
	})
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
