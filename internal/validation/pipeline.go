package validation

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"lettersprint/internal/cache"
	"lettersprint/internal/config"
	"lettersprint/internal/model"
	"lettersprint/internal/repository"
)

// Pipeline dispatches answers to the configured validation strategy. It is
// stateless with respect to game state: it receives answers and returns
// verdicts for the game service to apply.
type Pipeline struct {
	strategies map[model.ValidationMode]Strategy
	voting     *VotingStrategy
	verdicts   cache.VerdictCache
}

// NewPipeline wires the strategy set
func NewPipeline(dictRepo repository.DictionaryRepo, votes cache.VoteCache, verdicts cache.VerdictCache, aiCfg *config.AIConfig) *Pipeline {
	dictionary := NewDictionaryStrategy(dictRepo)
	voting := NewVotingStrategy(votes, DefaultVotingConfig())
	ai := NewAIStrategy(aiCfg)

	// Hybrid escalates dictionary misses to the AI chain when a judge is
	// configured, otherwise to player voting.
	var fallback Strategy = voting
	if aiCfg.IsEnabled() {
		fallback = ai
	}

	return &Pipeline{
		strategies: map[model.ValidationMode]Strategy{
			model.ValidationDictionary: dictionary,
			model.ValidationVoting:     voting,
			model.ValidationAI:         ai,
			model.ValidationHybrid:     NewHybridStrategy(dictionary, fallback),
		},
		voting:   voting,
		verdicts: verdicts,
	}
}

// Validate judges a single answer. The format check runs first and
// short-circuits without consulting a strategy. Provider failures never
// propagate; they produce an invalid verdict with zero confidence.
func (p *Pipeline) Validate(ctx context.Context, req *model.ValidationRequest) *model.ValidationResult {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	if ok, reason := CheckFormat(req.Answer, req.Letter); !ok {
		return invalidResult(req, req.Mode, reason)
	}

	strategy, ok := p.strategies[req.Mode]
	if !ok {
		log.Printf("unknown validation mode %q, falling back to dictionary", req.Mode)
		strategy = p.strategies[model.ValidationDictionary]
	}

	normalized := model.NormalizeAnswer(req.Answer)
	if cached, err := p.verdicts.Get(ctx, req.Mode, req.Category, req.Letter, normalized); err == nil && cached != nil {
		cached.RequestID = req.ID
		cached.Answer = req.Answer
		return cached
	}

	result, err := strategy.Validate(ctx, req)
	if err != nil {
		log.Printf("validation strategy %s failed for %q (%s): %v", strategy.Name(), req.Answer, req.Category, err)
		return invalidResult(req, req.Mode, "validation unavailable")
	}

	// Pending voting verdicts are transient; only settled verdicts are
	// worth caching. Voting outcomes are room-specific, so skip those too.
	if !result.Pending && req.Mode != model.ValidationVoting {
		if err := p.verdicts.Set(ctx, req.Mode, req.Category, req.Letter, normalized, result); err != nil {
			log.Printf("verdict cache write failed: %v", err)
		}
	}
	return result
}

// ValidateRound judges every non-empty answer of a round and assembles the
// verdict map. One failing lookup affects only its own pair.
func (p *Pipeline) ValidateRound(ctx context.Context, roomCode string, round *model.Round, mode model.ValidationMode) model.ValidationResults {
	results := model.ValidationResults{}

	for playerID, submission := range round.Answers {
		for category, answer := range submission.Answers {
			if strings.TrimSpace(answer) == "" {
				continue
			}
			result := p.Validate(ctx, &model.ValidationRequest{
				ID:       uuid.New().String(),
				RoomCode: roomCode,
				PlayerID: playerID,
				Category: category,
				Answer:   answer,
				Letter:   round.Letter,
				Mode:     mode,
			})
			if results[playerID] == nil {
				results[playerID] = map[string]model.ValidationResult{}
			}
			results[playerID][category] = *result
		}
	}

	return results
}

// SubmitVote records a player's vote for the voting strategy
func (p *Pipeline) SubmitVote(ctx context.Context, requestID, voterID string, isValid bool) (*model.VoteTally, error) {
	return p.voting.SubmitVote(ctx, requestID, voterID, isValid)
}

// ClearRoomVotes drops every in-flight voting tally for a room. Called when
// a game ends so stale sessions stop accepting votes.
func (p *Pipeline) ClearRoomVotes(ctx context.Context, roomCode string) error {
	return p.voting.ClearRoom(ctx, roomCode)
}
