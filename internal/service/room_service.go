package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"lettersprint/internal/cache"
	"lettersprint/internal/model"
)

// RoomService is the room directory: membership, per-room configuration,
// and readiness. The game service consults it once at game start.
type RoomService struct {
	rooms       cache.RoomCache
	broadcaster Broadcaster
}

// NewRoomService creates a new room service
func NewRoomService(rooms cache.RoomCache) *RoomService {
	return &RoomService{rooms: rooms}
}

// SetBroadcaster injects the event broadcaster
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom creates a room with the requesting player as creator
func (s *RoomService) CreateRoom(ctx context.Context, roomName, playerName string, cfg *model.GameConfig) (*model.Room, *model.Player, error) {
	code, err := s.generateRoomCode(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	config := model.DefaultGameConfig()
	if cfg != nil {
		config = *cfg
	}
	if err := validateConfig(&config); err != nil {
		return nil, nil, err
	}

	creator := model.Player{
		ID:       "player_" + uuid.New().String()[:8],
		Name:     playerName,
		JoinedAt: time.Now(),
	}

	room := &model.Room{
		Code:      code,
		Name:      roomName,
		CreatorID: creator.ID,
		Players:   map[string]model.Player{creator.ID: creator},
		JoinOrder: []string{creator.ID},
		Config:    config,
		Status:    model.RoomWaiting,
		CreatedAt: time.Now(),
	}

	if err := s.rooms.Set(ctx, room); err != nil {
		return nil, nil, fmt.Errorf("failed to store room: %w", err)
	}

	return room, &creator, nil
}

// JoinRoom adds a player to a waiting room
func (s *RoomService) JoinRoom(ctx context.Context, code, playerName string) (*model.Room, *model.Player, error) {
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	if room.Status != model.RoomWaiting {
		return nil, nil, fmt.Errorf("game already started: %w", ErrConflict)
	}
	if len(room.Players) >= room.Config.MaxPlayers {
		return nil, nil, fmt.Errorf("room is full: %w", ErrPreconditionFailed)
	}
	if len(playerName) == 0 || len(playerName) > model.MaxPlayerNameLength {
		return nil, nil, fmt.Errorf("invalid player name: %w", ErrPreconditionFailed)
	}

	player := model.Player{
		ID:       "player_" + uuid.New().String()[:8],
		Name:     playerName,
		JoinedAt: time.Now(),
	}
	room.Players[player.ID] = player
	room.JoinOrder = append(room.JoinOrder, player.ID)

	if err := s.rooms.Set(ctx, room); err != nil {
		return nil, nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EventPlayerJoined, map[string]interface{}{
			"player":      player,
			"playerCount": len(room.Players),
		})
	}
	return room, &player, nil
}

// LeaveRoom removes a player. If the creator leaves, the earliest remaining
// joiner becomes creator; an emptied room is deleted.
func (s *RoomService) LeaveRoom(ctx context.Context, code, playerID string) error {
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	if _, ok := room.Players[playerID]; !ok {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}

	delete(room.Players, playerID)
	for i, id := range room.JoinOrder {
		if id == playerID {
			room.JoinOrder = append(room.JoinOrder[:i], room.JoinOrder[i+1:]...)
			break
		}
	}

	if len(room.Players) == 0 {
		if err := s.rooms.Delete(ctx, code); err != nil {
			return err
		}
	} else {
		if room.CreatorID == playerID {
			room.CreatorID = room.JoinOrder[0]
		}
		if err := s.rooms.Set(ctx, room); err != nil {
			return err
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EventPlayerLeft, map[string]interface{}{
			"playerId":   playerID,
			"creatorId":  room.CreatorID,
			"playerLeft": len(room.Players),
		})
	}
	return nil
}

// SetReady flips a player's ready flag
func (s *RoomService) SetReady(ctx context.Context, code, playerID string, ready bool) (*model.Room, error) {
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	player, ok := room.Players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}

	player.IsReady = ready
	room.Players[playerID] = player
	if err := s.rooms.Set(ctx, room); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EventRoomUpdated, room)
	}
	return room, nil
}

// KickPlayer removes a player on the creator's request
func (s *RoomService) KickPlayer(ctx context.Context, code, requestingPlayerID, targetPlayerID string) error {
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	if room.CreatorID != requestingPlayerID {
		return fmt.Errorf("only the room creator can kick players: %w", ErrUnauthorized)
	}
	if targetPlayerID == requestingPlayerID {
		return fmt.Errorf("creator cannot kick themselves: %w", ErrConflict)
	}
	return s.LeaveRoom(ctx, code, targetPlayerID)
}

// GetRoom retrieves a room by code
func (s *RoomService) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	return s.rooms.Get(ctx, code)
}

// ListRooms returns every live room, newest first
func (s *RoomService) ListRooms(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// AllPlayersReady reports whether every player has set the ready flag
func (s *RoomService) AllPlayersReady(ctx context.Context, code string) (bool, error) {
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	return room.AllReady(), nil
}

// SetStatus updates the room lifecycle status
func (s *RoomService) SetStatus(ctx context.Context, code string, status model.RoomStatus) error {
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	room.Status = status
	return s.rooms.Set(ctx, room)
}

func validateConfig(cfg *model.GameConfig) error {
	if cfg.MaxPlayers < model.MinPlayers || cfg.MaxPlayers > model.MaxPlayersLimit {
		return fmt.Errorf("maxPlayers must be between %d and %d: %w",
			model.MinPlayers, model.MaxPlayersLimit, ErrPreconditionFailed)
	}
	if cfg.RoundTimeLimitSec < model.MinRoundTimeSec || cfg.RoundTimeLimitSec > model.MaxRoundTimeSec {
		return fmt.Errorf("roundTimeLimitSec must be between %d and %d: %w",
			model.MinRoundTimeSec, model.MaxRoundTimeSec, ErrPreconditionFailed)
	}
	if len(cfg.Categories) == 0 {
		return fmt.Errorf("at least one category is required: %w", ErrPreconditionFailed)
	}
	return nil
}

// generateRoomCode creates a 6-char alphanumeric code
func (s *RoomService) generateRoomCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, model.RoomCodeLength)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, model.RoomCodeLength)
		for i := range code {
			code[i] = model.RoomCodeChars[int(b[i])%len(model.RoomCodeChars)]
		}
		codeStr := string(code)

		exists, err := s.rooms.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room code")
}
