package proxy

import (
	"context"
	"errors"
	"fmt"
	"log"

	"swipeinterview/internal/model"
)

const (
	defaultTopic      = "general"
	defaultDifficulty = "medium"

	defaultScoreTokens    = 200
	defaultGenerateTokens = 150
)

// ResultCache short-circuits scoring of a question/answer pair seen before
type ResultCache interface {
	Get(ctx context.Context, question, answer string) (*model.ScoreResult, error)
	Set(ctx context.Context, question, answer string, result *model.ScoreResult) error
}

// Service turns score and generate requests into model prompts and typed replies
type Service struct {
	completer      Completer
	cache          ResultCache
	scoreTokens    int
	generateTokens int
}

// NewService wraps a completer. A nil completer means no API key is
// configured; every call then fails with ErrMissingAPIKey.
func NewService(completer Completer, scoreTokens, generateTokens int) *Service {
	if scoreTokens <= 0 {
		scoreTokens = defaultScoreTokens
	}
	if generateTokens <= 0 {
		generateTokens = defaultGenerateTokens
	}
	return &Service{
		completer:      completer,
		scoreTokens:    scoreTokens,
		generateTokens: generateTokens,
	}
}

// SetCache enables result caching for strictly parsed scores
func (s *Service) SetCache(c ResultCache) {
	s.cache = c
}

// Score rates an answer. Unparseable model replies fall back to
// HeuristicScore; only a missing key or a transport failure is an error.
func (s *Service) Score(ctx context.Context, req model.ScoreRequest) (*model.ScoreResult, error) {
	if s.completer == nil {
		return nil, ErrMissingAPIKey
	}

	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, req.Question, req.Answer); err == nil && hit != nil {
			return hit, nil
		}
	}

	reply, err := s.complete(ctx, buildScorePrompt(req.Question, req.Answer), s.scoreTokens)
	if err != nil {
		return nil, err
	}

	result, err := ParseScore(reply)
	if err != nil {
		var pf *model.ParseFailure
		if errors.As(err, &pf) {
			log.Printf("score reply rejected (%s), using heuristic", pf.Reason)
		}
		return HeuristicScore(reply), nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, req.Question, req.Answer, result); err != nil {
			log.Printf("score cache write failed: %v", err)
		}
	}
	return result, nil
}

// ScoreAnswer lets the service stand in for a remote scoring client
func (s *Service) ScoreAnswer(ctx context.Context, question, answer string) (*model.ScoreResult, error) {
	return s.Score(ctx, model.ScoreRequest{Question: question, Answer: answer})
}

// Generate asks the model for one interview question
func (s *Service) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResult, error) {
	if s.completer == nil {
		return nil, ErrMissingAPIKey
	}
	if req.Topic == "" {
		req.Topic = defaultTopic
	}
	if req.Difficulty == "" {
		req.Difficulty = defaultDifficulty
	}

	reply, err := s.complete(ctx, buildGeneratePrompt(req.Topic, req.Difficulty), s.generateTokens)
	if err != nil {
		return nil, err
	}
	return ParseGenerated(reply), nil
}

// complete treats an upstream error status as an empty reply
func (s *Service) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reply, err := s.completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("model API returned %d, treating as empty reply", upstream.Status)
			return "", nil
		}
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return reply, nil
}

func buildScorePrompt(question, answer string) string {
	return fmt.Sprintf(`You are a helpful evaluator. Rate the candidate answer on scale 0-10 and give a one-sentence feedback. Return JSON exactly like: {"score": <int>, "feedback":"..."}.
Question: %s
Answer: %s`, question, answer)
}

func buildGeneratePrompt(topic, difficulty string) string {
	return fmt.Sprintf(`Generate a single %s interview question about %s. Respond with exact JSON: {"question":"..."}`, difficulty, topic)
}
