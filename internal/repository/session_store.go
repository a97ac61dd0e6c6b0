package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"swipeinterview/internal/model"
)

// SessionsKey is where the whole session collection lives in key-value backends
const SessionsKey = "sessions"

// SessionStore loads and saves the whole session collection at once.
// Order is preserved: newest session first.
type SessionStore interface {
	Load(ctx context.Context) ([]*model.Session, error)
	Save(ctx context.Context, sessions []*model.Session) error
}

func encodeSessions(sessions []*model.Session) ([]byte, error) {
	if sessions == nil {
		sessions = []*model.Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("encode sessions: %w", err)
	}
	return data, nil
}

func decodeSessions(data []byte) ([]*model.Session, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var sessions []*model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}
