package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCatalogDefault(t *testing.T) {
	qs, err := LoadCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 6 {
		t.Fatalf("default catalog has %d questions, want 6", len(qs))
	}
	if qs[0].TimeLimit != 20 || qs[5].TimeLimit != 120 {
		t.Errorf("unexpected time limits %d / %d", qs[0].TimeLimit, qs[5].TimeLimit)
	}
	if err := ValidateCatalog(qs); err != nil {
		t.Errorf("default catalog invalid: %v", err)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	data := `questions:
  - id: a
    text: First?
    difficulty: easy
    time_limit: 20
  - id: b
    text: Second?
    difficulty: hard
    time_limit: 60
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	qs, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(qs) != 2 || qs[1].ID != "b" || qs[1].TimeLimit != 60 || qs[1].Order != 1 {
		t.Errorf("parsed %+v", qs)
	}
}

func TestParseCatalogRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "questions: []", "no questions"},
		{"duplicate", "questions:\n  - {id: a, text: x, difficulty: easy, time_limit: 5}\n  - {id: a, text: y, difficulty: easy, time_limit: 5}", "duplicate"},
		{"difficulty", "questions:\n  - {id: a, text: x, difficulty: brutal, time_limit: 5}", "difficulty"},
		{"time limit", "questions:\n  - {id: a, text: x, difficulty: easy, time_limit: 0}", "time_limit"},
		{"no text", "questions:\n  - {id: a, difficulty: easy, time_limit: 5}", "no text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
