// Package interview holds the session state machine: question sequencing,
// countdown, submission and finalization.
package interview

import (
	"errors"
	"math"
	"time"

	"swipeinterview/internal/model"
)

// FeedbackScoringFailed marks an attempt whose scoring call failed
const FeedbackScoringFailed = "(scoring failed)"

var (
	ErrFinished     = errors.New("session already finished")
	ErrEmptyCatalog = errors.New("question catalog is empty")
	ErrNoAttempt    = errors.New("session has no current question")
)

// Activate materializes attempts on first activation. It returns false when
// the session was already in progress and nothing changed.
func Activate(s *model.Session, catalog []model.Question) (bool, error) {
	switch s.Status {
	case model.SessionFinished:
		return false, ErrFinished
	case model.SessionInProgress:
		return false, nil
	}
	if len(catalog) == 0 {
		return false, ErrEmptyCatalog
	}

	s.Attempts = make([]model.Attempt, 0, len(catalog))
	for _, q := range catalog {
		s.Attempts = append(s.Attempts, model.NewAttempt(q))
	}
	s.CurrentIndex = 0
	s.Status = model.SessionInProgress
	s.FinalScore = nil
	s.UpdatedAt = time.Now()
	return true, nil
}

// Tick burns one second off the current attempt. It reports true only on the
// tick that brings the remaining time to zero.
func Tick(s *model.Session) bool {
	if s.Status != model.SessionInProgress {
		return false
	}
	cur := s.Current()
	if cur == nil || cur.TimeRemaining <= 0 {
		return false
	}
	cur.TimeRemaining--
	return cur.TimeRemaining == 0
}

// PendingScore reports whether the current attempt was handed to scoring but
// never got a result applied
func PendingScore(s *model.Session) bool {
	cur := s.Current()
	return s.Status == model.SessionInProgress && cur != nil && cur.Submitted && cur.Score == nil
}

// RecordAnswer stores the submitted text on the current attempt
func RecordAnswer(s *model.Session, answer string) error {
	if s.Status == model.SessionFinished {
		return ErrFinished
	}
	cur := s.Current()
	if cur == nil {
		return ErrNoAttempt
	}
	cur.Answer = answer
	s.UpdatedAt = time.Now()
	return nil
}

// ApplyScore records the scoring outcome on the current attempt, advances the
// index and finalizes the session after the last question. A scoring error is
// absorbed as a zero score with FeedbackScoringFailed.
func ApplyScore(s *model.Session, result *model.ScoreResult, scoreErr error) (bool, error) {
	if s.Status == model.SessionFinished {
		return false, ErrFinished
	}
	cur := s.Current()
	if cur == nil {
		return false, ErrNoAttempt
	}

	if scoreErr != nil || result == nil {
		zero := 0.0
		cur.Score = &zero
		cur.Feedback = FeedbackScoringFailed
	} else {
		v := result.Score
		cur.Score = &v
		cur.Feedback = result.Feedback
	}

	s.CurrentIndex++
	now := time.Now()
	s.UpdatedAt = now
	if s.CurrentIndex < len(s.Attempts) {
		return false, nil
	}

	final := FinalScore(s.Attempts)
	s.FinalScore = &final
	s.Status = model.SessionFinished
	s.FinishedAt = &now
	return true, nil
}

// FinalScore is the mean of all attempt scores, nil counted as zero, rounded
// to one decimal place.
func FinalScore(attempts []model.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		if a.Score != nil {
			sum += *a.Score
		}
	}
	return math.Round(sum/float64(len(attempts))*10) / 10
}

// ArmCountdown returns the value the timer restarts from for the current
// attempt. An unsubmitted attempt persisted with no time left resumes from
// its full limit; a submitted one keeps its clock.
func ArmCountdown(s *model.Session) int {
	cur := s.Current()
	if cur == nil {
		return 0
	}
	if cur.TimeRemaining <= 0 && !cur.Submitted {
		cur.TimeRemaining = cur.TimeLimit
	}
	return cur.TimeRemaining
}
