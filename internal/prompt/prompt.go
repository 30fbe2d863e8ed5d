// Package prompt assembles generation prompts from a methodology
// template, retrieved context and the user's query. Assembly is a pure
// function of its inputs.
package prompt

import (
	"strings"

	"studybuddy/internal/apperr"
)

// Template is a named prompt body with {{placeholder}} slots.
// {{query}} and {{context}} are always present; anything else comes
// from the caller's parameter map.
type Template struct {
	Tag  string
	Body string
}

var templates = map[string]Template{
	TagTimetable:       {Tag: TagTimetable, Body: timetableTemplate},
	TagPriorityTriage:  {Tag: TagPriorityTriage, Body: priorityTriageTemplate},
	TagWellnessAdvice:  {Tag: TagWellnessAdvice, Body: wellnessTemplate},
	TagRecommendations: {Tag: TagRecommendations, Body: recommendationsTemplate},
}

// ByTag resolves a methodology tag to its template.
func ByTag(tag string) (Template, error) {
	t, ok := templates[tag]
	if !ok {
		return Template{}, apperr.New(apperr.Validation, "unknown methodology %q", tag)
	}
	return t, nil
}

// Assemble merges the query, ranked context blocks and parameters into
// one prompt, keeping the result under maxLen characters by dropping
// context blocks from the end of the list (lowest similarity rank
// first). The user's query is never cut. maxLen <= 0 disables the
// bound.
func Assemble(tmpl Template, queryText string, contextBlocks []string, params map[string]string, maxLen int) string {
	blocks := contextBlocks
	for {
		out := render(tmpl, queryText, blocks, params)
		if maxLen <= 0 || len(out) <= maxLen || len(blocks) == 0 {
			return out
		}
		blocks = blocks[:len(blocks)-1]
	}
}

func render(tmpl Template, queryText string, blocks []string, params map[string]string) string {
	pairs := []string{
		"{{query}}", queryText,
		"{{context}}", joinContext(blocks),
	}
	for k, v := range params {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	out := strings.NewReplacer(pairs...).Replace(tmpl.Body)
	// Unfilled slots read as noise to the model; blank them.
	return scrubUnfilled(out)
}

func joinContext(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString("- ")
		b.WriteString(block)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func scrubUnfilled(s string) string {
	for {
		start := strings.Index(s, "{{")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "}}")
		if end < 0 {
			return s
		}
		s = s[:start] + s[start+end+2:]
	}
}
