package parser

import (
	"strings"
	"testing"

	"studybuddy/internal/apperr"
)

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := Extract([]byte("binary"), "syllabus.exe")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtract_PlainText(t *testing.T) {
	got, err := Extract([]byte("chapter one\nchapter two"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "chapter one\nchapter two" {
		t.Errorf("text passthrough changed content: %q", got)
	}
}

func TestExtract_Markdown(t *testing.T) {
	md := "# Circadian basics\n\nMelatonin rises in the *evening*.\n\n- avoid screens\n- dim lights\n"
	got, err := Extract([]byte(md), "basics.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Circadian basics", "Melatonin rises in the evening.", "avoid screens", "dim lights"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in extracted text:\n%s", want, got)
		}
	}
	if strings.Contains(got, "#") || strings.Contains(got, "*") {
		t.Errorf("markdown syntax leaked into plain text:\n%s", got)
	}
}

func TestExtract_CaseInsensitiveExtension(t *testing.T) {
	if _, err := Extract([]byte("x"), "NOTES.TXT"); err != nil {
		t.Errorf("extension matching should ignore case: %v", err)
	}
}
