package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rhetoric/internal/store"
)

func TestBuildEmbedsRecordFields(t *testing.T) {
	tr := store.Transcript{VideoID: "ABC123", Title: "Rally", Channel: "Chan", Text: "Hello everyone welcome back {{title}}"}
	p := Build(tr)

	want := "Video: Rally\nChannel: Chan\n\nTranscript:\nHello everyone welcome back {{title}}"
	if p.User != want {
		t.Fatalf("user prompt = %q, want %q", p.User, want)
	}
	if strings.Contains(p.System, "{{schema}}") || !strings.Contains(p.System, `"Cannot determine"`) {
		t.Fatalf("system prompt missing schema: %s", p.System)
	}
	if !strings.Contains(p.System, "Article II") {
		t.Fatal("system prompt missing legal criteria")
	}
	if p.SchemaName != SchemaName {
		t.Fatalf("schema name = %q", p.SchemaName)
	}
}

func TestSchemaShape(t *testing.T) {
	var s struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Type string   `json:"type"`
			Enum []string `json:"enum"`
		} `json:"properties"`
		Required             []string `json:"required"`
		AdditionalProperties *bool    `json:"additionalProperties"`
	}
	if err := json.Unmarshal(Schema(), &s); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if s.AdditionalProperties == nil || *s.AdditionalProperties {
		t.Fatal("schema must forbid additional properties")
	}
	if len(s.Required) != 3 {
		t.Fatalf("expected three required fields, got %v", s.Required)
	}
	answer := s.Properties["answer"]
	if strings.Join(answer.Enum, "|") != strings.Join([]string{string(store.AnswerYes), string(store.AnswerNo), string(store.AnswerCannotDetermine)}, "|") {
		t.Fatalf("answer enum = %v", answer.Enum)
	}
	if s.Properties["evidence"].Type != "array" {
		t.Fatalf("evidence type = %q", s.Properties["evidence"].Type)
	}
}

func TestSchemaReturnsCopy(t *testing.T) {
	a := Schema()
	a[0] = 'x'
	if Schema()[0] != '{' {
		t.Fatal("Schema must not expose shared storage")
	}
}

func TestCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("Judge this.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	p := Build(store.Transcript{Text: "x"}, WithSystemTemplate(tmpl))
	if !strings.HasPrefix(p.System, "Judge this.") || !strings.Contains(p.System, `"evidence"`) {
		t.Fatalf("custom template not applied with schema: %q", p.System)
	}

	def, err := LoadTemplate("")
	if err != nil || def != DefaultSystemTemplate() {
		t.Fatalf("empty path should load default template: %v", err)
	}
	if _, err := LoadTemplate(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing template")
	}
}
