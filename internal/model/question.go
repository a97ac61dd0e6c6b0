package model

// Difficulty grades a catalog question
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is an immutable catalog entry
type Question struct {
	ID         string     `json:"id" bson:"_id" yaml:"id"`
	Text       string     `json:"text" bson:"text" yaml:"text"`
	Difficulty Difficulty `json:"difficulty" bson:"difficulty" yaml:"difficulty"`
	TimeLimit  int        `json:"timeLimit" bson:"timeLimit" yaml:"time_limit"` // seconds
	Order      int        `json:"-" bson:"order" yaml:"-"`
}
