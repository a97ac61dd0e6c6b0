// Package scoring is the interview side of the scoring proxy.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swipeinterview/internal/config"
	"swipeinterview/internal/model"
)

// timeLimits are the seconds given to generated questions per difficulty
var timeLimits = map[model.Difficulty]int{
	model.DifficultyEasy:   60,
	model.DifficultyMedium: 90,
	model.DifficultyHard:   120,
}

// Client calls a remote scoring proxy over HTTP
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the proxy at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ScoreAnswer posts to /api/score. Any non-200 reply is an error; the state
// machine records it as a failed score.
func (c *Client) ScoreAnswer(ctx context.Context, question, answer string) (*model.ScoreResult, error) {
	var result model.ScoreResult
	if err := c.post(ctx, "/api/score", model.ScoreRequest{Question: question, Answer: answer}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateQuestion posts to /api/generate
func (c *Client) GenerateQuestion(ctx context.Context, topic, difficulty string) (string, error) {
	var result model.GenerateResult
	if err := c.post(ctx, "/api/generate", model.GenerateRequest{Topic: topic, Difficulty: difficulty}, &result); err != nil {
		return "", err
	}
	return result.Question, nil
}

// GenerateCatalog asks the proxy for one question per entry of plan and
// returns them as a validated catalog
func (c *Client) GenerateCatalog(ctx context.Context, topic string, plan []model.Difficulty) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(plan))
	for i, d := range plan {
		if !d.Valid() {
			return nil, fmt.Errorf("unknown difficulty %q", d)
		}
		text, err := c.GenerateQuestion(ctx, topic, string(d))
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, model.Question{
			ID:         fmt.Sprintf("g%d", i+1),
			Text:       strings.TrimSpace(text),
			Difficulty: d,
			TimeLimit:  timeLimits[d],
			Order:      i,
		})
	}
	if err := config.ValidateCatalog(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling scoring proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("scoring proxy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding scoring reply: %w", err)
	}
	return nil
}
