package service

import (
	"math"
	"sort"
	"strings"

	"lettersprint/internal/model"
)

// ScoringConfig holds the point values applied when scoring a round
type ScoringConfig struct {
	ValidAnswerPoints     int
	UniqueAnswerPoints    int
	InvalidAnswerPoints   int
	EmptyAnswerPoints     int
	InvalidAnswerPenalty  int
	CompletionBonus       bool
	CompletionBonusPoints int
	CategoryWeights       map[string]float64 // lowercase category -> weight
}

// DefaultScoringConfig returns the standard point values
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ValidAnswerPoints:     model.PointsValidAnswer,
		UniqueAnswerPoints:    model.PointsUniqueAnswer,
		InvalidAnswerPoints:   model.PointsInvalidAnswer,
		EmptyAnswerPoints:     model.PointsEmptyAnswer,
		InvalidAnswerPenalty:  0,
		CompletionBonus:       true,
		CompletionBonusPoints: model.CompletionBonus,
		CategoryWeights:       map[string]float64{},
	}
}

// AnswerScore explains the points one answer earned
type AnswerScore struct {
	Category string `json:"category"`
	Answer   string `json:"answer"`
	IsValid  bool   `json:"isValid"`
	IsUnique bool   `json:"isUnique"`
	Points   int    `json:"points"`
	Reason   string `json:"reason"`
}

// RoundScoreDetail is the full per-player scoring breakdown for one round
type RoundScoreDetail struct {
	PlayerID      string                 `json:"playerId"`
	Answers       map[string]AnswerScore `json:"answers"`
	TotalScore    int                    `json:"totalScore"`
	ValidAnswers  int                    `json:"validAnswers"`
	UniqueAnswers int                    `json:"uniqueAnswers"`
	EmptyAnswers  int                    `json:"emptyAnswers"`
}

// ScoringService computes round and final scores. It is pure: the same
// submissions and verdicts always produce the same scores.
type ScoringService struct {
	cfg ScoringConfig
}

// NewScoringService creates a new scoring service
func NewScoringService(cfg ScoringConfig) *ScoringService {
	return &ScoringService{cfg: cfg}
}

// ScoreRound computes every player's score for a round. Players without a
// submission are scored as all-empty. Round totals are clamped at zero.
func (s *ScoringService) ScoreRound(round *model.Round, playerIDs []string) (map[string]int, map[string]RoundScoreDetail) {
	frequency := answerFrequency(round.Answers, round.Validation)

	scores := make(map[string]int, len(playerIDs))
	details := make(map[string]RoundScoreDetail, len(playerIDs))

	for _, playerID := range playerIDs {
		detail := s.scorePlayer(playerID, round, frequency)
		scores[playerID] = detail.TotalScore
		details[playerID] = detail
	}
	return scores, details
}

func (s *ScoringService) scorePlayer(playerID string, round *model.Round, frequency map[string]map[string]int) RoundScoreDetail {
	detail := RoundScoreDetail{
		PlayerID: playerID,
		Answers:  map[string]AnswerScore{},
	}

	submission, submitted := round.Answers[playerID]
	verdicts := round.Validation[playerID]

	total := 0
	for _, category := range round.Categories {
		answer := ""
		if submitted {
			answer = submission.Answers[category]
		}
		score := s.scoreAnswer(category, answer, verdicts, frequency)
		detail.Answers[category] = score
		total += score.Points

		switch {
		case strings.TrimSpace(answer) == "":
			detail.EmptyAnswers++
		case score.IsValid:
			detail.ValidAnswers++
			if score.IsUnique {
				detail.UniqueAnswers++
			}
		}
	}

	if s.cfg.CompletionBonus && submitted && detail.EmptyAnswers == 0 {
		total += s.cfg.CompletionBonusPoints
	}
	if total < 0 {
		total = 0
	}
	detail.TotalScore = total
	return detail
}

func (s *ScoringService) scoreAnswer(category, answer string, verdicts map[string]model.ValidationResult, frequency map[string]map[string]int) AnswerScore {
	score := AnswerScore{Category: category, Answer: answer}

	if strings.TrimSpace(answer) == "" {
		score.Points = s.cfg.EmptyAnswerPoints
		score.Reason = "no answer provided"
		return score
	}

	verdict, hasVerdict := verdicts[category]
	if !hasVerdict || !verdict.IsValid {
		score.Points = s.cfg.InvalidAnswerPoints - s.cfg.InvalidAnswerPenalty
		score.Reason = "answer is invalid"
		if hasVerdict && verdict.Reason != "" {
			score.Reason = verdict.Reason
		}
		return score
	}

	score.IsValid = true
	normalized := model.NormalizeAnswer(answer)
	freq := frequency[category][normalized]

	points := s.cfg.ValidAnswerPoints
	if freq == 1 {
		score.IsUnique = true
		points = s.cfg.UniqueAnswerPoints
		score.Reason = "unique valid answer"
	} else {
		score.Reason = "valid answer shared with other players"
	}

	if weight, ok := s.cfg.CategoryWeights[strings.ToLower(category)]; ok {
		points = int(math.Round(float64(points) * weight))
	}
	score.Points = points
	return score
}

// answerFrequency counts, per category, how many players gave each
// normalized valid answer
func answerFrequency(answers map[string]model.PlayerAnswers, verdicts model.ValidationResults) map[string]map[string]int {
	frequency := map[string]map[string]int{}

	for playerID, submission := range answers {
		for category, answer := range submission.Answers {
			if strings.TrimSpace(answer) == "" {
				continue
			}
			verdict, ok := verdicts[playerID][category]
			if !ok || !verdict.IsValid {
				continue
			}
			if frequency[category] == nil {
				frequency[category] = map[string]int{}
			}
			frequency[category][model.NormalizeAnswer(answer)]++
		}
	}
	return frequency
}

// FinalScores re-derives every player's valid and unique answer counts by
// walking all completed rounds with the same uniqueness rule, then ranks by
// descending cumulative total. Ties break by join order (the round-master
// rotation), which is stable and deterministic.
func (s *ScoringService) FinalScores(state *model.GameState, playerNames map[string]string) []model.ScoreBreakdown {
	breakdowns := make([]model.ScoreBreakdown, 0, len(state.RoundMasters))

	for _, playerID := range state.RoundMasters {
		breakdown := model.ScoreBreakdown{
			PlayerID:   playerID,
			PlayerName: playerNames[playerID],
			TotalScore: state.Scores[playerID],
		}

		for i := range state.Rounds {
			round := &state.Rounds[i]
			breakdown.RoundScores = append(breakdown.RoundScores, round.Scores[playerID])

			frequency := answerFrequency(round.Answers, round.Validation)
			submission, ok := round.Answers[playerID]
			if !ok {
				continue
			}
			for category, answer := range submission.Answers {
				if strings.TrimSpace(answer) == "" {
					continue
				}
				verdict, ok := round.Validation[playerID][category]
				if !ok || !verdict.IsValid {
					continue
				}
				breakdown.ValidAnswers++
				if frequency[category][model.NormalizeAnswer(answer)] == 1 {
					breakdown.UniqueAnswers++
				}
			}
		}
		breakdowns = append(breakdowns, breakdown)
	}

	// Stable sort keeps join order within equal totals
	sort.SliceStable(breakdowns, func(i, j int) bool {
		return breakdowns[i].TotalScore > breakdowns[j].TotalScore
	})
	for i := range breakdowns {
		breakdowns[i].Rank = i + 1
	}
	return breakdowns
}

// Winner returns the player id with the strictly highest cumulative score.
// Ties break by join order.
func (s *ScoringService) Winner(state *model.GameState) string {
	winner := ""
	best := math.MinInt
	for _, playerID := range state.RoundMasters {
		if score := state.Scores[playerID]; score > best {
			best = score
			winner = playerID
		}
	}
	return winner
}

// RankEntry is one row of the live ranking
type RankEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	TotalScore int    `json:"totalScore"`
	Rank       int    `json:"rank"`
}

// PlayerRanking returns the current standings with shared ranks for ties
func (s *ScoringService) PlayerRanking(state *model.GameState, playerNames map[string]string) []RankEntry {
	entries := make([]RankEntry, 0, len(state.RoundMasters))
	for _, playerID := range state.RoundMasters {
		entries = append(entries, RankEntry{
			PlayerID:   playerID,
			PlayerName: playerNames[playerID],
			TotalScore: state.Scores[playerID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})

	rank := 1
	for i := range entries {
		if i > 0 && entries[i].TotalScore < entries[i-1].TotalScore {
			rank = i + 1
		}
		entries[i].Rank = rank
	}
	return entries
}
