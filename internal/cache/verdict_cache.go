package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"lettersprint/internal/model"
)

// VerdictCache caches validation verdicts so repeated answers across rounds
// and rooms skip the strategy round-trip. Keyed by strategy, category,
// letter, and normalized answer.
type VerdictCache interface {
	Get(ctx context.Context, mode model.ValidationMode, category, letter, normalized string) (*model.ValidationResult, error)
	Set(ctx context.Context, mode model.ValidationMode, category, letter, normalized string, result *model.ValidationResult) error
}

type verdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerdictCache creates a new verdict cache
func NewVerdictCache(client *redis.Client) VerdictCache {
	return &verdictCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *verdictCache) key(mode model.ValidationMode, category, letter, normalized string) string {
	return fmt.Sprintf("validation:%s:%s:%s:%s",
		mode, strings.ToLower(category), strings.ToLower(letter), normalized)
}

func (c *verdictCache) Get(ctx context.Context, mode model.ValidationMode, category, letter, normalized string) (*model.ValidationResult, error) {
	data, err := c.client.Get(ctx, c.key(mode, category, letter, normalized)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.ValidationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *verdictCache) Set(ctx context.Context, mode model.ValidationMode, category, letter, normalized string, result *model.ValidationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(mode, category, letter, normalized), data, c.ttl).Err()
}
