package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettersprint/internal/config"
	"lettersprint/internal/model"
)

func newTestPipeline(repo *fakeDictRepo) (*Pipeline, *fakeVerdictCache) {
	verdicts := newFakeVerdictCache()
	return NewPipeline(repo, newFakeVoteCache(), verdicts, &config.AIConfig{}), verdicts
}

func TestPipelineFormatShortCircuit(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog")
	pipeline, _ := newTestPipeline(repo)
	ctx := context.Background()

	tests := []struct {
		name   string
		answer string
	}{
		{"empty answer", "   "},
		{"wrong starting letter", "cat"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := repo.lookupCount()
			result := pipeline.Validate(ctx, &model.ValidationRequest{
				Category: "animals", Answer: tc.answer, Letter: "D",
				Mode: model.ValidationDictionary,
			})
			assert.False(t, result.IsValid)
			assert.Equal(t, before, repo.lookupCount(), "format failures never reach a strategy")
		})
	}
}

func TestPipelineAssignsRequestID(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog")
	pipeline, _ := newTestPipeline(repo)

	result := pipeline.Validate(context.Background(), &model.ValidationRequest{
		Category: "animals", Answer: "dog", Letter: "D",
		Mode: model.ValidationDictionary,
	})
	assert.NotEmpty(t, result.RequestID)
}

func TestPipelineCachesSettledVerdicts(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog")
	pipeline, verdicts := newTestPipeline(repo)
	ctx := context.Background()

	req := func() *model.ValidationRequest {
		return &model.ValidationRequest{
			Category: "animals", Answer: "dog", Letter: "D",
			Mode: model.ValidationDictionary,
		}
	}

	first := pipeline.Validate(ctx, req())
	require.True(t, first.IsValid)
	assert.Equal(t, 1, verdicts.size())
	lookupsAfterFirst := repo.lookupCount()

	second := pipeline.Validate(ctx, req())
	assert.True(t, second.IsValid)
	assert.Equal(t, lookupsAfterFirst, repo.lookupCount(), "second call is served from cache")
}

func TestPipelineSkipsCachingVotingVerdicts(t *testing.T) {
	repo := newFakeDictRepo()
	pipeline, verdicts := newTestPipeline(repo)

	result := pipeline.Validate(context.Background(), &model.ValidationRequest{
		ID: "req1", RoomCode: "ROOM01", PlayerID: "owner",
		Category: "animals", Answer: "dog", Letter: "D",
		Mode: model.ValidationVoting,
	})

	assert.True(t, result.Pending)
	assert.Equal(t, 0, verdicts.size(), "room-scoped voting verdicts are never cached")
}

func TestPipelineUnknownModeFallsBackToDictionary(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog")
	pipeline, _ := newTestPipeline(repo)

	result := pipeline.Validate(context.Background(), &model.ValidationRequest{
		Category: "animals", Answer: "dog", Letter: "D",
		Mode: model.ValidationMode("telepathy"),
	})
	assert.True(t, result.IsValid)
}

func TestPipelineProviderFailureYieldsInvalid(t *testing.T) {
	repo := newFakeDictRepo()
	repo.fail = true
	pipeline, _ := newTestPipeline(repo)

	result := pipeline.Validate(context.Background(), &model.ValidationRequest{
		Category: "animals", Answer: "dog", Letter: "D",
		Mode: model.ValidationDictionary,
	})

	assert.False(t, result.IsValid)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "validation unavailable", result.Reason)
}

func TestValidateRound(t *testing.T) {
	repo := newFakeDictRepo()
	repo.add("animals", "dog", "deer")
	repo.add("cities", "dallas")
	pipeline, _ := newTestPipeline(repo)

	round := &model.Round{
		RoundNumber: 1,
		Letter:      "D",
		Categories:  []string{"animals", "cities"},
		Answers: map[string]model.PlayerAnswers{
			"p1": {PlayerID: "p1", Answers: map[string]string{"animals": "dog", "cities": "dallas"}},
			"p2": {PlayerID: "p2", Answers: map[string]string{"animals": "drong", "cities": ""}},
		},
	}

	results := pipeline.ValidateRound(context.Background(), "ROOM01", round, model.ValidationDictionary)

	require.Contains(t, results, "p1")
	assert.True(t, results["p1"]["animals"].IsValid)
	assert.True(t, results["p1"]["cities"].IsValid)

	require.Contains(t, results, "p2")
	assert.False(t, results["p2"]["animals"].IsValid)
	_, hasEmpty := results["p2"]["cities"]
	assert.False(t, hasEmpty, "empty answers are skipped, not judged")
}
