package model

import "time"

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomInGame  RoomStatus = "in_game"
	RoomClosed  RoomStatus = "closed"
)

// Player is a participant in a room
type Player struct {
	ID       string    `json:"id" bson:"id"`
	Name     string    `json:"name" bson:"name"`
	IsReady  bool      `json:"isReady" bson:"isReady"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// Room is a logical game session identified by a short code
type Room struct {
	Code      string            `json:"code" bson:"code"`
	Name      string            `json:"name,omitempty" bson:"name,omitempty"`
	CreatorID string            `json:"creatorId" bson:"creatorId"`
	Players   map[string]Player `json:"players" bson:"players"`
	JoinOrder []string          `json:"joinOrder" bson:"joinOrder"`
	Config    GameConfig        `json:"config" bson:"config"`
	Status    RoomStatus        `json:"status" bson:"status"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
}

// AllReady reports whether every player in the room has set the ready flag
func (r *Room) AllReady() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return len(r.Players) > 0
}

// PlayersInJoinOrder returns the roster ordered by join time
func (r *Room) PlayersInJoinOrder() []Player {
	players := make([]Player, 0, len(r.JoinOrder))
	for _, id := range r.JoinOrder {
		if p, ok := r.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}
