package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lettersprint/internal/cache"
	"lettersprint/internal/model"
)

var (
	ErrVoteSessionNotFound = errors.New("voting session not found")
	ErrVotingClosed        = errors.New("voting has already resolved")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrSelfVote            = errors.New("players cannot vote on their own answer")
)

// VotingConfig tunes how a voting session resolves
type VotingConfig struct {
	RequiredVotes     int
	MajorityThreshold float64
}

// DefaultVotingConfig returns the standard quorum and majority settings
func DefaultVotingConfig() VotingConfig {
	return VotingConfig{
		RequiredVotes:     model.MinVotesRequired,
		MajorityThreshold: model.MajorityThreshold,
	}
}

// VotingStrategy defers judgment to the other players in the room. Until a
// quorum of votes is in, it returns a pending verdict with neutral
// confidence; once the quorum is reached the tally resolves deterministically
// and exactly once.
type VotingStrategy struct {
	votes cache.VoteCache
	cfg   VotingConfig
}

// NewVotingStrategy creates a new voting strategy
func NewVotingStrategy(votes cache.VoteCache, cfg VotingConfig) *VotingStrategy {
	return &VotingStrategy{votes: votes, cfg: cfg}
}

func (s *VotingStrategy) Name() string { return "voting" }

func (s *VotingStrategy) Validate(ctx context.Context, req *model.ValidationRequest) (*model.ValidationResult, error) {
	tally, err := s.votes.GetTally(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: vote tally lookup: %v", ErrProviderFailure, err)
	}

	if tally == nil {
		tally = &model.VoteTally{
			RequestID: req.ID,
			RoomCode:  req.RoomCode,
			PlayerID:  req.PlayerID,
			Category:  req.Category,
			Answer:    req.Answer,
			CreatedAt: time.Now(),
		}
		if err := s.votes.SetTally(ctx, tally); err != nil {
			return nil, fmt.Errorf("%w: vote tally create: %v", ErrProviderFailure, err)
		}
	}

	if !tally.Resolved && len(tally.Votes) < s.cfg.RequiredVotes {
		return &model.ValidationResult{
			RequestID:  req.ID,
			Answer:     req.Answer,
			Category:   req.Category,
			IsValid:    false,
			Confidence: 0.5, // neutral until votes are in
			Method:     model.ValidationVoting,
			Reason:     "voting in progress",
			Pending:    true,
		}, nil
	}

	return s.resolve(ctx, req, tally)
}

// SubmitVote records one vote. Duplicate votes by the same voter and votes
// on one's own answer are rejected; votes after resolution are rejected.
func (s *VotingStrategy) SubmitVote(ctx context.Context, requestID, voterID string, isValid bool) (*model.VoteTally, error) {
	tally, err := s.votes.GetTally(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if tally == nil {
		return nil, ErrVoteSessionNotFound
	}
	if tally.Resolved {
		return nil, ErrVotingClosed
	}
	if voterID == tally.PlayerID {
		return nil, ErrSelfVote
	}
	if tally.HasVoted(voterID) {
		return nil, ErrAlreadyVoted
	}

	tally.Votes = append(tally.Votes, model.ValidationVote{
		VoterID:   voterID,
		IsValid:   isValid,
		Timestamp: time.Now(),
	})
	if err := s.votes.SetTally(ctx, tally); err != nil {
		return nil, err
	}
	return tally, nil
}

// ClearRoom drops every tally the room still holds
func (s *VotingStrategy) ClearRoom(ctx context.Context, roomCode string) error {
	return s.votes.DeleteRoom(ctx, roomCode)
}

// resolve closes the tally and derives the verdict from the vote counts.
// Confidence is the winning share of the vote.
func (s *VotingStrategy) resolve(ctx context.Context, req *model.ValidationRequest, tally *model.VoteTally) (*model.ValidationResult, error) {
	if !tally.Resolved {
		tally.Resolved = true
		if err := s.votes.SetTally(ctx, tally); err != nil {
			return nil, fmt.Errorf("%w: vote tally resolve: %v", ErrProviderFailure, err)
		}
	}

	valid, invalid := tally.Count()
	total := valid + invalid
	if total == 0 {
		return invalidResult(req, model.ValidationVoting, "no votes cast"), nil
	}

	validShare := float64(valid) / float64(total)
	isValid := validShare >= s.cfg.MajorityThreshold

	confidence := validShare
	reason := fmt.Sprintf("accepted by vote (%d of %d)", valid, total)
	if !isValid {
		confidence = 1.0 - validShare
		reason = fmt.Sprintf("rejected by vote (%d of %d)", invalid, total)
	}

	return &model.ValidationResult{
		RequestID:  req.ID,
		Answer:     req.Answer,
		Category:   req.Category,
		IsValid:    isValid,
		Confidence: confidence,
		Method:     model.ValidationVoting,
		Reason:     reason,
	}, nil
}
