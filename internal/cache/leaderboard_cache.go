package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cliplabel/internal/model"
)

// LeaderboardCache handles Redis ZSET operations for per-project accuracy
// leaderboards. The board is display-only: it is refreshed from a full
// accuracy recomputation and never consulted by the core operations.
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, projectID string, role model.Role, userID string, score float64) error
	GetTop(ctx context.Context, projectID string, role model.Role, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, projectID string, role model.Role, userID string) (int64, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
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

func (c *leaderboardCache) key(projectID string, role model.Role) string {
	return fmt.Sprintf("project:%s:lb:%s", projectID, role)
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, projectID string, role model.Role, userID string, score float64) error {
	return c.client.ZAdd(ctx, c.key(projectID, role), redis.Z{
		Score:  score,
		Member: userID,
	}).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, projectID string, role model.Role, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(projectID, role), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			UserID: z.Member.(string),
			Score:  z.Score,
			Rank:   i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, projectID string, role model.Role, userID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(projectID, role), userID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
