package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Progress is the last computed ground-truth coverage snapshot for a
// project. Snapshot reads may be slightly stale; the mode controller always
// recomputes from the store.
type Progress struct {
	ProjectID  string    `json:"projectId"`
	TotalSlots int       `json:"totalSlots"`
	Completed  int       `json:"completed"`
	Mode       string    `json:"mode"`
	ComputedAt time.Time `json:"computedAt"`
}

type ProgressCache interface {
	Set(ctx context.Context, progress *Progress) error
	Get(ctx context.Context, projectID string) (*Progress, error)
	Delete(ctx context.Context, projectID string) error
}

type progressCache struct {
	client *redis.Client
}

func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{
		client: client,
	}
}

func (c *progressCache) Set(ctx context.Context, progress *Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "progress:"+progress.ProjectID, data, time.Minute).Err()
}

func (c *progressCache) Get(ctx context.Context, projectID string) (*Progress, error) {
	data, err := c.client.Get(ctx, "progress:"+projectID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var progress Progress
	err = json.Unmarshal([]byte(data), &progress)
	return &progress, err
}

func (c *progressCache) Delete(ctx context.Context, projectID string) error {
	return c.client.Del(ctx, "progress:"+projectID).Err()
}

type noopProgressCache struct{}

// NoopProgressCache returns a cache that stores nothing, for tools that do
// not run next to Redis.
func NoopProgressCache() ProgressCache {
	return noopProgressCache{}
}

func (noopProgressCache) Set(ctx context.Context, progress *Progress) error { return nil }

func (noopProgressCache) Get(ctx context.Context, projectID string) (*Progress, error) {
	return nil, nil
}

func (noopProgressCache) Delete(ctx context.Context, projectID string) error { return nil }
