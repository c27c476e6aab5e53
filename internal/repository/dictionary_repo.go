package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lettersprint/internal/model"
)

// DictionaryEntry is one category-scoped word list document
type DictionaryEntry struct {
	Category  string    `bson:"category"`
	Words     []string  `bson:"words"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// DictionaryRepo is the word-list source used by the dictionary validation
// strategy. Words are stored normalized (lowercase, trimmed).
type DictionaryRepo interface {
	WordExists(ctx context.Context, category, normalizedWord string) (bool, error)
	GetWords(ctx context.Context, category string) ([]string, error)
	AddWords(ctx context.Context, category string, words []string) error
}

type dictionaryRepo struct {
	collection *mongo.Collection
}

// NewDictionaryRepo creates a new dictionary repository
func NewDictionaryRepo(db *mongo.Database) DictionaryRepo {
	return &dictionaryRepo{
		collection: db.Collection("dictionaries"),
	}
}

func (r *dictionaryRepo) WordExists(ctx context.Context, category, normalizedWord string) (bool, error) {
	filter := bson.M{
		"category": strings.ToLower(category),
		"words":    normalizedWord,
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dictionaryRepo) GetWords(ctx context.Context, category string) ([]string, error) {
	var entry DictionaryEntry
	err := r.collection.FindOne(ctx, bson.M{"category": strings.ToLower(category)}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return entry.Words, nil
}

func (r *dictionaryRepo) AddWords(ctx context.Context, category string, words []string) error {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		if n := model.NormalizeAnswer(w); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return nil
	}

	update := bson.M{
		"$addToSet": bson.M{"words": bson.M{"$each": normalized}},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"category": strings.ToLower(category)}, update, opts)
	return err
}
