package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"swipeinterview/internal/model"
)

// CatalogFile is the YAML layout of a question catalog
type CatalogFile struct {
	Questions []model.Question `yaml:"questions"`
}

// DefaultCatalog is the built-in interview used when no catalog file is configured
func DefaultCatalog() []model.Question {
	return []model.Question{
		{ID: "q1", Text: "Tell me about a recent project you built.", Difficulty: model.DifficultyEasy, TimeLimit: 20},
		{ID: "q2", Text: "Explain how you manage state in a React app.", Difficulty: model.DifficultyEasy, TimeLimit: 60},
		{ID: "q3", Text: "Describe REST vs GraphQL.", Difficulty: model.DifficultyMedium, TimeLimit: 60},
		{ID: "q4", Text: "How would you optimise a slow React list?", Difficulty: model.DifficultyMedium, TimeLimit: 90},
		{ID: "q5", Text: "Design an API for a todo app; outline endpoints and data model.", Difficulty: model.DifficultyHard, TimeLimit: 120},
		{ID: "q6", Text: "How do you ensure your app is secure against XSS and CSRF?", Difficulty: model.DifficultyHard, TimeLimit: 120},
	}
}

// LoadCatalog reads and validates a question catalog from a YAML file.
// An empty path yields the built-in catalog.
func LoadCatalog(path string) ([]model.Question, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML
func ParseCatalog(data []byte) ([]model.Question, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := ValidateCatalog(file.Questions); err != nil {
		return nil, err
	}
	for i := range file.Questions {
		file.Questions[i].Order = i
	}
	return file.Questions, nil
}

// ValidateCatalog checks ids, difficulties and time limits
func ValidateCatalog(questions []model.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("catalog has no questions")
	}
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question %d has no id", i+1)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if q.Text == "" {
			return fmt.Errorf("question %s has no text", q.ID)
		}
		if !q.Difficulty.Valid() {
			return fmt.Errorf("question %s has unknown difficulty %q", q.ID, q.Difficulty)
		}
		if q.TimeLimit <= 0 {
			return fmt.Errorf("question %s must have a positive time_limit", q.ID)
		}
	}
	return nil
}
