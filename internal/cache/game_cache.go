package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lettersprint/internal/model"
)

// GameCache is the state store for live game state. The game service always
// writes the full record after each mutation; there are no partial updates.
type GameCache interface {
	Get(ctx context.Context, roomCode string) (*model.GameState, error)
	Set(ctx context.Context, roomCode string, state *model.GameState) error
	Delete(ctx context.Context, roomCode string) error
	ActiveRoomCodes(ctx context.Context) ([]string, error)
}

type gameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameCache creates a new game state cache
func NewGameCache(client *redis.Client) GameCache {
	return &gameCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *gameCache) key(roomCode string) string {
	return fmt.Sprintf("game:%s", roomCode)
}

func (c *gameCache) Get(ctx context.Context, roomCode string) (*model.GameState, error) {
	data, err := c.client.Get(ctx, c.key(roomCode)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *gameCache) Set(ctx context.Context, roomCode string, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(roomCode), data, c.ttl).Err()
}

func (c *gameCache) Delete(ctx context.Context, roomCode string) error {
	return c.client.Del(ctx, c.key(roomCode)).Err()
}

// ActiveRoomCodes lists rooms with a stored game state, used to recover
// round deadlines after a restart
func (c *gameCache) ActiveRoomCodes(ctx context.Context) ([]string, error) {
	keys, err := c.client.Keys(ctx, "game:*").Result()
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(keys))
	for _, k := range keys {
		codes = append(codes, k[len("game:"):])
	}
	return codes, nil
}
