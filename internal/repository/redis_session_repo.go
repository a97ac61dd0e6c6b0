package repository

import (
	"context"

	"github.com/redis/go-redis/v9"

	"swipeinterview/internal/model"
)

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore keeps the collection as one JSON array under SessionsKey
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{
		client: client,
	}
}

func (s *redisSessionStore) Load(ctx context.Context) ([]*model.Session, error) {
	data, err := s.client.Get(ctx, SessionsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSessions(data)
}

func (s *redisSessionStore) Save(ctx context.Context, sessions []*model.Session) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, SessionsKey, data, 0).Err()
}
