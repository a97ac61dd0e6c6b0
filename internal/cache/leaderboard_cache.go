package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "sessions:lb"

// LeaderboardCache handles Redis ZSET operations for finished sessions
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, sessionID string, score float64) error
	Remove(ctx context.Context, sessionID string) error
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name,omitempty"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, sessionID string, score float64) error {
	return c.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  score,
		Member: sessionID,
	}).Err()
}

func (c *leaderboardCache) Remove(ctx context.Context, sessionID string) error {
	return c.client.ZRem(ctx, leaderboardKey, sessionID).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			SessionID: z.Member.(string),
			Score:     z.Score,
			Rank:      i + 1,
		}
	}
	return entries, nil
}
