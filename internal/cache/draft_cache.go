package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftCache keeps the in-progress answer text of a session's current question
type DraftCache interface {
	Set(ctx context.Context, sessionID string, index int, draft string) error
	Get(ctx context.Context, sessionID string, index int) (string, error)
	Delete(ctx context.Context, sessionID string, index int) error
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftCache(client *redis.Client) DraftCache {
	return &draftCache{
		client: client,
		ttl:    2 * time.Hour,
	}
}

func (c *draftCache) key(sessionID string, index int) string {
	return fmt.Sprintf("session:%s:q:%d:draft", sessionID, index)
}

func (c *draftCache) Set(ctx context.Context, sessionID string, index int, draft string) error {
	return c.client.Set(ctx, c.key(sessionID, index), draft, c.ttl).Err()
}

// Get returns "" when no draft is stored
func (c *draftCache) Get(ctx context.Context, sessionID string, index int) (string, error) {
	draft, err := c.client.Get(ctx, c.key(sessionID, index)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return draft, err
}

func (c *draftCache) Delete(ctx context.Context, sessionID string, index int) error {
	return c.client.Del(ctx, c.key(sessionID, index)).Err()
}
