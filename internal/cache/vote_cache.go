package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lettersprint/internal/model"
)

// VoteCache stores in-progress voting tallies for the voting validation
// strategy. A tally is resolved at most once.
type VoteCache interface {
	SetTally(ctx context.Context, tally *model.VoteTally) error
	GetTally(ctx context.Context, requestID string) (*model.VoteTally, error)
	DeleteRoom(ctx context.Context, roomCode string) error
}

type voteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVoteCache creates a new vote cache
func NewVoteCache(client *redis.Client) VoteCache {
	return &voteCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *voteCache) key(requestID string) string {
	return fmt.Sprintf("vote:%s", requestID)
}

// The per-room set lives outside the room:* namespace so the room cache's
// key scan never picks it up
func (c *voteCache) roomSetKey(roomCode string) string {
	return fmt.Sprintf("votes:%s", roomCode)
}

func (c *voteCache) SetTally(ctx context.Context, tally *model.VoteTally) error {
	data, err := json.Marshal(tally)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(tally.RequestID), data, c.ttl).Err(); err != nil {
		return err
	}
	// Track the tally under its room so EndGame can sweep it
	if err := c.client.SAdd(ctx, c.roomSetKey(tally.RoomCode), tally.RequestID).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, c.roomSetKey(tally.RoomCode), c.ttl).Err()
}

func (c *voteCache) GetTally(ctx context.Context, requestID string) (*model.VoteTally, error) {
	data, err := c.client.Get(ctx, c.key(requestID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tally model.VoteTally
	if err := json.Unmarshal([]byte(data), &tally); err != nil {
		return nil, err
	}
	return &tally, nil
}

func (c *voteCache) DeleteRoom(ctx context.Context, roomCode string) error {
	ids, err := c.client.SMembers(ctx, c.roomSetKey(roomCode)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, id := range ids {
		c.client.Del(ctx, c.key(id))
	}
	return c.client.Del(ctx, c.roomSetKey(roomCode)).Err()
}
