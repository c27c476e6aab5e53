package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettersprint/internal/model"
)

func dictRequest(answer string) *model.ValidationRequest {
	return &model.ValidationRequest{
		ID:       "req1",
		RoomCode: "ROOM01",
		PlayerID: "p1",
		Category: "animals",
		Answer:   answer,
		Letter:   "D",
		Mode:     model.ValidationDictionary,
	}
}

func TestDictionaryStrategyHit(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog", "deer")
	strategy := NewDictionaryStrategy(repo)

	result, err := strategy.Validate(context.Background(), dictRequest("Dog"))
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, model.ValidationDictionary, result.Method)
	assert.Empty(t, result.Suggestions)
}

func TestDictionaryStrategyMissWithSuggestions(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog", "deer", "dolphin", "cat")
	strategy := NewDictionaryStrategy(repo)

	result, err := strategy.Validate(context.Background(), dictRequest("dogg"))
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Equal(t, 0.0, result.Confidence)
	// "dog" is one edit away; "cat" has the wrong letter and never appears
	assert.Contains(t, result.Suggestions, "dog")
	assert.NotContains(t, result.Suggestions, "cat")
	assert.LessOrEqual(t, len(result.Suggestions), maxSuggestions)
}

func TestDictionaryStrategyLookupFailure(t *testing.T) {
	repo := newFakeDictRepo()
	repo.fail = true
	strategy := NewDictionaryStrategy(repo)

	_, err := strategy.Validate(context.Background(), dictRequest("dog"))
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"dog", "dog", 0},
		{"dog", "dogg", 1},
		{"dog", "dig", 1},
		{"dog", "", 3},
		{"", "", 0},
		{"kitten", "sitting", 3},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, levenshtein(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}
