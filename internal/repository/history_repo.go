package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lettersprint/internal/model"
)

// GameHistory is the persisted record of a completed game
type GameHistory struct {
	GameID      string                 `bson:"gameId"`
	RoomCode    string                 `bson:"roomCode"`
	CreatorID   string                 `bson:"creatorId"`
	Players     []model.Player         `bson:"players"`
	Config      model.GameConfig       `bson:"config"`
	Rounds      []model.Round          `bson:"rounds"`
	FinalScores []model.ScoreBreakdown `bson:"finalScores"`
	Winner      string                 `bson:"winner"`
	StartTime   time.Time              `bson:"startTime"`
	EndTime     time.Time              `bson:"endTime"`
	SavedAt     time.Time              `bson:"savedAt"`
}

// HistoryRepo handles MongoDB operations for completed games
type HistoryRepo interface {
	SaveCompletedGame(ctx context.Context, history *GameHistory) error
	GetByRoomCode(ctx context.Context, roomCode string) ([]*GameHistory, error)
	GetByPlayer(ctx context.Context, playerID string) ([]*GameHistory, error)
}

type historyRepo struct {
	collection *mongo.Collection
}

// NewHistoryRepo creates a new game history repository
func NewHistoryRepo(db *mongo.Database) HistoryRepo {
	return &historyRepo{
		collection: db.Collection("game_history"),
	}
}

func (r *historyRepo) SaveCompletedGame(ctx context.Context, history *GameHistory) error {
	if history.SavedAt.IsZero() {
		history.SavedAt = time.Now()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"gameId": history.GameID}, history, opts)
	return err
}

func (r *historyRepo) GetByRoomCode(ctx context.Context, roomCode string) ([]*GameHistory, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": roomCode})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []*GameHistory
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *historyRepo) GetByPlayer(ctx context.Context, playerID string) ([]*GameHistory, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"players.id": playerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []*GameHistory
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}
