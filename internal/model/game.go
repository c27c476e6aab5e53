package model

import (
	"math/rand"
	"strings"
	"time"
)

// GamePhase is the current stage of the game state machine
type GamePhase string

const (
	PhaseWaiting         GamePhase = "waiting"
	PhaseLetterSelection GamePhase = "letter_selection"
	PhasePlaying         GamePhase = "playing"
	PhaseValidation      GamePhase = "validation"
	PhaseScoring         GamePhase = "scoring"
	PhaseRoundResults    GamePhase = "round_results"
	PhaseGameEnded       GamePhase = "game_ended"
)

// LetterSelectionMode controls how the round letter is chosen
type LetterSelectionMode string

const (
	LetterRandom       LetterSelectionMode = "random"
	LetterPlayerChoice LetterSelectionMode = "player_choice"
)

// phaseTransitions lists the legal edges of the state machine.
// Every non-terminal phase may also jump straight to game_ended.
var phaseTransitions = map[GamePhase][]GamePhase{
	PhaseWaiting:         {PhaseLetterSelection, PhaseGameEnded},
	PhaseLetterSelection: {PhasePlaying, PhaseGameEnded},
	PhasePlaying:         {PhaseValidation, PhaseGameEnded},
	PhaseValidation:      {PhaseScoring, PhaseGameEnded},
	PhaseScoring:         {PhaseRoundResults, PhaseGameEnded},
	PhaseRoundResults:    {PhaseLetterSelection, PhaseGameEnded},
	PhaseGameEnded:       {},
}

// CanTransition reports whether moving from one phase to another is legal
func CanTransition(from, to GamePhase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GameConfig is the per-room game configuration, fixed at game start
type GameConfig struct {
	MaxPlayers          int                 `json:"maxPlayers" bson:"maxPlayers"`
	RoundTimeLimitSec   int                 `json:"roundTimeLimitSec" bson:"roundTimeLimitSec"`
	MaxRounds           int                 `json:"maxRounds,omitempty" bson:"maxRounds,omitempty"` // 0 = unlimited
	Categories          []string            `json:"categories" bson:"categories"`
	ValidationMode      ValidationMode      `json:"validationMode" bson:"validationMode"`
	LetterSelectionMode LetterSelectionMode `json:"letterSelectionMode" bson:"letterSelectionMode"`
	ExcludedLetters     []string            `json:"excludedLetters,omitempty" bson:"excludedLetters,omitempty"`
}

// DefaultGameConfig returns the configuration used when a room does not override anything
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MaxPlayers:          DefaultMaxPlayers,
		RoundTimeLimitSec:   DefaultRoundTimeSec,
		MaxRounds:           0,
		Categories:          append([]string(nil), DefaultCategories...),
		ValidationMode:      ValidationDictionary,
		LetterSelectionMode: LetterPlayerChoice,
		ExcludedLetters:     append([]string(nil), ExcludedLetters...),
	}
}

// PlayerAnswers is one player's submission for a round. Created exactly once
// by a successful submit; never mutated afterward.
type PlayerAnswers struct {
	PlayerID    string            `json:"playerId" bson:"playerId"`
	Answers     map[string]string `json:"answers" bson:"answers"` // category -> raw answer
	SubmittedAt time.Time         `json:"submittedAt" bson:"submittedAt"`
	IsComplete  bool              `json:"isComplete" bson:"isComplete"`

	// Letter validity counted at submission time; full validation follows
	// in the validation phase
	ValidAnswerCount   int `json:"validAnswerCount" bson:"validAnswerCount"`
	InvalidAnswerCount int `json:"invalidAnswerCount" bson:"invalidAnswerCount"`
}

// Round is a single round of the game
type Round struct {
	RoundNumber   int                      `json:"roundNumber" bson:"roundNumber"`
	Letter        string                   `json:"letter" bson:"letter"`
	Categories    []string                 `json:"categories" bson:"categories"`
	TimeLimitSec  int                      `json:"timeLimitSec" bson:"timeLimitSec"`
	StartTime     time.Time                `json:"startTime" bson:"startTime"`
	EndTime       *time.Time               `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Deadline      time.Time                `json:"deadline" bson:"deadline"`
	RoundMasterID string                   `json:"roundMasterId" bson:"roundMasterId"`
	Answers       map[string]PlayerAnswers `json:"answers" bson:"answers"` // playerId -> submission
	Scores        map[string]int           `json:"scores" bson:"scores"`   // playerId -> round score
	Validation    ValidationResults        `json:"validation,omitempty" bson:"validation,omitempty"`
}

// GameState is the full mutable record for one room's game. It is owned and
// mutated only by the game service; everything else receives snapshots.
type GameState struct {
	GameID           string         `json:"gameId" bson:"gameId"`
	RoomCode         string         `json:"roomCode" bson:"roomCode"`
	Phase            GamePhase      `json:"phase" bson:"phase"`
	Config           GameConfig     `json:"config" bson:"config"`
	CurrentRound     *Round         `json:"currentRound,omitempty" bson:"currentRound,omitempty"`
	Rounds           []Round        `json:"rounds" bson:"rounds"`
	Scores           map[string]int `json:"scores" bson:"scores"` // playerId -> cumulative
	RoundMasters     []string       `json:"roundMasters" bson:"roundMasters"`
	RoundMasterIndex int            `json:"roundMasterIndex" bson:"roundMasterIndex"`
	StartTime        time.Time      `json:"startTime" bson:"startTime"`
	EndTime          *time.Time     `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Winner           string         `json:"winner,omitempty" bson:"winner,omitempty"`
	IsActive         bool           `json:"isActive" bson:"isActive"`
}

// CurrentRoundMaster returns the player id allowed to pick the next letter
func (g *GameState) CurrentRoundMaster() string {
	if len(g.RoundMasters) == 0 {
		return ""
	}
	return g.RoundMasters[g.RoundMasterIndex%len(g.RoundMasters)]
}

// PendingPlayers returns the ids of players who have not submitted this round,
// in rotation order
func (g *GameState) PendingPlayers() []string {
	pending := []string{}
	if g.CurrentRound == nil {
		return pending
	}
	for _, id := range g.RoundMasters {
		if _, ok := g.CurrentRound.Answers[id]; !ok {
			pending = append(pending, id)
		}
	}
	return pending
}

// AllSubmitted reports whether every player has a submission for the current round
func (g *GameState) AllSubmitted() bool {
	return g.CurrentRound != nil && len(g.CurrentRound.Answers) >= len(g.RoundMasters)
}

// ScoreBreakdown is a player's final tally, computed at game end
type ScoreBreakdown struct {
	PlayerID      string `json:"playerId" bson:"playerId"`
	PlayerName    string `json:"playerName" bson:"playerName"`
	RoundScores   []int  `json:"roundScores" bson:"roundScores"`
	TotalScore    int    `json:"totalScore" bson:"totalScore"`
	ValidAnswers  int    `json:"validAnswers" bson:"validAnswers"`
	UniqueAnswers int    `json:"uniqueAnswers" bson:"uniqueAnswers"`
	Rank          int    `json:"rank" bson:"rank"`
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomLetter draws a letter uniformly from the alphabet minus the exclusions
func RandomLetter(excluded []string) string {
	pool := make([]byte, 0, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		letter := alphabet[i : i+1]
		skip := false
		for _, ex := range excluded {
			if strings.EqualFold(ex, letter) {
				skip = true
				break
			}
		}
		if !skip {
			pool = append(pool, alphabet[i])
		}
	}
	if len(pool) == 0 {
		pool = []byte(alphabet)
	}
	return string(pool[rand.Intn(len(pool))])
}

// IsAllowedLetter reports whether a letter is a single A-Z character outside
// the exclusion list
func IsAllowedLetter(letter string, excluded []string) bool {
	if len(letter) != 1 {
		return false
	}
	upper := strings.ToUpper(letter)
	if upper[0] < 'A' || upper[0] > 'Z' {
		return false
	}
	for _, ex := range excluded {
		if strings.EqualFold(ex, upper) {
			return false
		}
	}
	return true
}
