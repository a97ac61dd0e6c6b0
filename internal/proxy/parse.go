package proxy

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"swipeinterview/internal/model"
)

const (
	MinScore = 0
	MaxScore = 10

	feedbackLimit = 200
)

var firstInteger = regexp.MustCompile(`\d+`)

// CleanJSON strips markdown code fences some models wrap around JSON replies
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseScore validates a model reply against {"score": number, "feedback": string}.
// Anything else yields a *model.ParseFailure.
func ParseScore(raw string) (*model.ScoreResult, error) {
	var reply struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &reply); err != nil {
		return nil, &model.ParseFailure{Raw: raw, Reason: "not a JSON object"}
	}
	if reply.Score == nil {
		return nil, &model.ParseFailure{Raw: raw, Reason: "missing numeric score"}
	}
	if *reply.Score < MinScore || *reply.Score > MaxScore {
		return nil, &model.ParseFailure{Raw: raw, Reason: "score out of range"}
	}
	feedback := ""
	if reply.Feedback != nil {
		feedback = *reply.Feedback
	}
	return &model.ScoreResult{Score: *reply.Score, Feedback: feedback}, nil
}

// HeuristicScore is the fallback policy for replies that fail ParseScore: the
// first integer in the text, clamped to the score scale, and the text itself
// flattened to one line as feedback.
func HeuristicScore(raw string) *model.ScoreResult {
	score := 0
	if m := firstInteger.FindString(raw); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			score = n
		} else {
			// too many digits for an int
			score = MaxScore
		}
	}
	score = min(max(score, MinScore), MaxScore)

	feedback := strings.ReplaceAll(raw, "\r", "")
	feedback = strings.ReplaceAll(feedback, "\n", " ")
	if r := []rune(feedback); len(r) > feedbackLimit {
		feedback = string(r[:feedbackLimit])
	}
	return &model.ScoreResult{Score: float64(score), Feedback: feedback}
}

// ParseGenerated reads {"question": "..."}; any other reply is used verbatim
func ParseGenerated(raw string) *model.GenerateResult {
	var reply struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &reply); err == nil && reply.Question != "" {
		return &model.GenerateResult{Question: reply.Question}
	}
	return &model.GenerateResult{Question: raw}
}
