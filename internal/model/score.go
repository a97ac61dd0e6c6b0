package model

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ScoreResult is a scored answer on the 0-10 scale
type ScoreResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// GenerateResult carries a generated question
type GenerateResult struct {
	Question string `json:"question"`
}

// ParseFailure explains why a model reply did not match the expected schema
type ParseFailure struct {
	Raw    string
	Reason string
}

func (f *ParseFailure) Error() string {
	return "unparseable model reply: " + f.Reason
}

// ContactInfo is the best-effort guess pulled from a resume
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
