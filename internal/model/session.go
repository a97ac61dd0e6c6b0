package model

import "time"

type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in-progress"
	SessionFinished   SessionStatus = "finished"
)

// Attempt is the mutable record of one question within a session
type Attempt struct {
	QuestionID    string     `json:"questionId" bson:"questionId"`
	Text          string     `json:"text" bson:"text"`
	Difficulty    Difficulty `json:"difficulty" bson:"difficulty"`
	TimeLimit     int        `json:"timeLimit" bson:"timeLimit"`
	Answer        string     `json:"answer" bson:"answer"`
	Submitted     bool       `json:"submitted" bson:"submitted"` // answer handed to scoring
	Score         *float64   `json:"score" bson:"score"` // nil until scored
	Feedback      string     `json:"feedback" bson:"feedback"`
	TimeRemaining int        `json:"timeRemaining" bson:"timeRemaining"`
}

// NewAttempt materializes an attempt from its catalog question
func NewAttempt(q Question) Attempt {
	return Attempt{
		QuestionID:    q.ID,
		Text:          q.Text,
		Difficulty:    q.Difficulty,
		TimeLimit:     q.TimeLimit,
		TimeRemaining: q.TimeLimit,
	}
}

// Session is one candidate's end-to-end interview record
type Session struct {
	ID           string        `json:"id" bson:"_id"`
	Name         string        `json:"name" bson:"name"`
	Email        string        `json:"email" bson:"email"`
	Phone        string        `json:"phone" bson:"phone"`
	ResumeText   string        `json:"resumeText" bson:"resumeText"`
	ResumeKey    string        `json:"resumeKey,omitempty" bson:"resumeKey,omitempty"` // archived upload, if any
	Attempts     []Attempt     `json:"questions" bson:"questions"`
	CurrentIndex int           `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	Status       SessionStatus `json:"status" bson:"status"`
	FinalScore   *float64      `json:"finalScore" bson:"finalScore"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
	FinishedAt   *time.Time    `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
}

// Current returns the attempt at the current index, or nil when there is none
func (s *Session) Current() *Attempt {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Attempts) {
		return nil
	}
	return &s.Attempts[s.CurrentIndex]
}

// Clone returns a deep copy safe to hand out of the owning goroutine
func (s *Session) Clone() *Session {
	c := *s
	if s.Attempts != nil {
		c.Attempts = make([]Attempt, len(s.Attempts))
		for i, a := range s.Attempts {
			if a.Score != nil {
				v := *a.Score
				a.Score = &v
			}
			c.Attempts[i] = a
		}
	}
	if s.FinalScore != nil {
		v := *s.FinalScore
		c.FinalScore = &v
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// SessionView is what a client needs to render the active question
type SessionView struct {
	SessionID     string        `json:"sessionId"`
	Status        SessionStatus `json:"status"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	Question      *Attempt      `json:"question,omitempty"`
	TimeRemaining int           `json:"timeRemaining"`
	FinalScore    *float64      `json:"finalScore,omitempty"`
}

// ViewOf builds the resume point of a session
func ViewOf(s *Session) *SessionView {
	v := &SessionView{
		SessionID:  s.ID,
		Status:     s.Status,
		Index:      s.CurrentIndex,
		Total:      len(s.Attempts),
		FinalScore: s.FinalScore,
	}
	if cur := s.Current(); cur != nil {
		a := *cur
		v.Question = &a
		v.TimeRemaining = cur.TimeRemaining
	}
	return v
}
