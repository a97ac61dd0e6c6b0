package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"swipeinterview/internal/model"
)

// ScoreCache remembers proxy score results for identical question/answer pairs
type ScoreCache interface {
	Get(ctx context.Context, question, answer string) (*model.ScoreResult, error)
	Set(ctx context.Context, question, answer string, result *model.ScoreResult) error
}

type scoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache creates a new score cache
func NewScoreCache(client *redis.Client, ttl time.Duration) ScoreCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &scoreCache{
		client: client,
		ttl:    ttl,
	}
}

// ScoreKey hashes the pair so arbitrary answer text stays out of key names
func ScoreKey(question, answer string) string {
	sum := sha256.Sum256([]byte(question + "\x00" + answer))
	return "score:" + hex.EncodeToString(sum[:])
}

func (c *scoreCache) Set(ctx context.Context, question, answer string, result *model.ScoreResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ScoreKey(question, answer), data, c.ttl).Err()
}

// Get returns nil, nil on a miss
func (c *scoreCache) Get(ctx context.Context, question, answer string) (*model.ScoreResult, error) {
	data, err := c.client.Get(ctx, ScoreKey(question, answer)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.ScoreResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
