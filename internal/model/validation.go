package model

import (
	"strings"
	"time"
	"unicode"
)

// ValidationMode selects the strategy used to judge answers
type ValidationMode string

const (
	ValidationDictionary ValidationMode = "dictionary"
	ValidationVoting     ValidationMode = "voting"
	ValidationAI         ValidationMode = "ai"
	ValidationHybrid     ValidationMode = "hybrid"
)

// ValidationRequest is one answer to be judged
type ValidationRequest struct {
	ID       string         `json:"id"`
	RoomCode string         `json:"roomCode"`
	PlayerID string         `json:"playerId"`
	Category string         `json:"category"`
	Answer   string         `json:"answer"`
	Letter   string         `json:"letter"`
	Mode     ValidationMode `json:"mode"`
}

// ValidationResult is the verdict for one (player, category) answer.
// Produced once during the validation phase; immutable afterward.
type ValidationResult struct {
	RequestID   string         `json:"requestId" bson:"requestId"`
	Answer      string         `json:"answer" bson:"answer"`
	Category    string         `json:"category" bson:"category"`
	IsValid     bool           `json:"isValid" bson:"isValid"`
	Confidence  float64        `json:"confidence" bson:"confidence"` // 0..1
	Method      ValidationMode `json:"method" bson:"method"`
	Reason      string         `json:"reason,omitempty" bson:"reason,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	Pending     bool           `json:"pending,omitempty" bson:"pending,omitempty"`
}

// ValidationResults maps playerId -> category -> verdict
type ValidationResults map[string]map[string]ValidationResult

// ValidationVote is one player's vote on another player's answer
type ValidationVote struct {
	VoterID   string    `json:"voterId" bson:"voterId"`
	IsValid   bool      `json:"isValid" bson:"isValid"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// VoteTally is the in-progress voting state for one validation request.
// Resolved at most once; votes after resolution are rejected.
type VoteTally struct {
	RequestID string           `json:"requestId"`
	RoomCode  string           `json:"roomCode"`
	PlayerID  string           `json:"playerId"` // answer owner, may not vote
	Category  string           `json:"category"`
	Answer    string           `json:"answer"`
	Votes     []ValidationVote `json:"votes"`
	Resolved  bool             `json:"resolved"`
	CreatedAt time.Time        `json:"createdAt"`
}

// HasVoted reports whether a voter already cast a vote in this tally
func (t *VoteTally) HasVoted(voterID string) bool {
	for _, v := range t.Votes {
		if v.VoterID == voterID {
			return true
		}
	}
	return false
}

// Count returns the number of valid and invalid votes
func (t *VoteTally) Count() (valid, invalid int) {
	for _, v := range t.Votes {
		if v.IsValid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// NormalizeAnswer lowercases, trims, and strips everything but letters,
// digits and spaces so answers compare consistently across players
func NormalizeAnswer(answer string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(answer)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
