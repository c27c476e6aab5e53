package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lettersprint/internal/cache"
	"lettersprint/internal/model"
	"lettersprint/internal/repository"
	"lettersprint/internal/validation"
)

// GameService owns the phase state machine and is the only component that
// reads, modifies, and writes game state. All mutation for a room runs under
// that room's lock, so round closure executes exactly once no matter which
// trigger (last submission, timer expiry, force end) wins the race.
type GameService struct {
	games       cache.GameCache
	roomSvc     *RoomService
	pipeline    *validation.Pipeline
	scoring     *ScoringService
	history     repository.HistoryRepo
	timer       *RoundTimer
	broadcaster Broadcaster

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// Delay between showing round results and advancing. Negative disables
	// the automatic advance (tests drive AdvanceOrEnd directly).
	resultsDelay time.Duration
}

// NewGameService creates a new game service
func NewGameService(
	games cache.GameCache,
	roomSvc *RoomService,
	pipeline *validation.Pipeline,
	scoring *ScoringService,
	history repository.HistoryRepo,
	timer *RoundTimer,
) *GameService {
	return &GameService{
		games:        games,
		roomSvc:      roomSvc,
		pipeline:     pipeline,
		scoring:      scoring,
		history:      history,
		timer:        timer,
		locks:        map[string]*sync.Mutex{},
		resultsDelay: time.Duration(model.RoundResultsDelaySec) * time.Second,
	}
}

// SetBroadcaster injects the event broadcaster
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetResultsDelay overrides the round-results display delay
func (s *GameService) SetResultsDelay(d time.Duration) {
	s.resultsDelay = d
}

// roomLock returns the mutex serializing one room's state mutations.
// Locks are per room; rooms never block each other.
// transition moves the state machine along a legal edge. Every phase change
// in this service goes through here, so the transition table in the model
// package is the single source of truth.
func (s *GameService) transition(state *model.GameState, next model.GamePhase) error {
	if !model.CanTransition(state.Phase, next) {
		return fmt.Errorf("illegal phase transition %s -> %s: %w", state.Phase, next, ErrInvalidPhase)
	}
	state.Phase = next
	return nil
}

func (s *GameService) roomLock(roomCode string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[roomCode]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[roomCode] = l
	return l
}

// StartGame initializes game state for a room. Only the room creator may
// start, every player must be ready, and the minimum player count applies.
func (s *GameService) StartGame(ctx context.Context, roomCode, playerID string) (*model.GameState, error) {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.roomSvc.GetRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("room %s: %w", roomCode, ErrNotFound)
	}
	if room.CreatorID != playerID {
		return nil, fmt.Errorf("only the room creator can start the game: %w", ErrUnauthorized)
	}
	if len(room.Players) < model.MinPlayers {
		return nil, fmt.Errorf("minimum %d players required: %w", model.MinPlayers, ErrPreconditionFailed)
	}
	if !room.AllReady() {
		return nil, fmt.Errorf("not all players are ready: %w", ErrPreconditionFailed)
	}

	if existing, err := s.games.Get(ctx, roomCode); err != nil {
		return nil, err
	} else if existing != nil && existing.IsActive {
		return nil, fmt.Errorf("game already running: %w", ErrConflict)
	}

	scores := make(map[string]int, len(room.Players))
	rotation := make([]string, 0, len(room.Players))
	for _, p := range room.PlayersInJoinOrder() {
		scores[p.ID] = 0
		rotation = append(rotation, p.ID)
	}

	state := &model.GameState{
		GameID:       uuid.New().String(),
		RoomCode:     roomCode,
		Phase:        model.PhaseWaiting,
		Config:       room.Config,
		Rounds:       []model.Round{},
		Scores:       scores,
		RoundMasters: rotation,
		StartTime:    time.Now(),
		IsActive:     true,
	}
	if err := s.transition(state, model.PhaseLetterSelection); err != nil {
		return nil, err
	}

	if err := s.games.Set(ctx, roomCode, state); err != nil {
		return nil, err
	}
	if err := s.roomSvc.SetStatus(ctx, roomCode, model.RoomInGame); err != nil {
		log.Printf("room %s: status update failed: %v", roomCode, err)
	}

	log.Printf("game started: room=%s players=%d", roomCode, len(rotation))
	s.broadcast(roomCode, EventGameStarted, map[string]interface{}{
		"gameState":   state,
		"roundMaster": state.CurrentRoundMaster(),
	})

	// First round: either wait for the round master's letter or auto-start
	if state.Config.LetterSelectionMode == model.LetterPlayerChoice {
		s.broadcast(roomCode, EventSelectLetter, map[string]interface{}{
			"roundMasterId": state.CurrentRoundMaster(),
			"roundNumber":   1,
		})
	} else {
		if err := s.beginRound(ctx, state, ""); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// SelectLetter starts a round with the round master's chosen letter
func (s *GameService) SelectLetter(ctx context.Context, roomCode, playerID, letter string) error {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		return err
	}
	if state.Phase != model.PhaseLetterSelection {
		return fmt.Errorf("letter selection not allowed in phase %s: %w", state.Phase, ErrInvalidPhase)
	}
	if state.CurrentRoundMaster() != playerID {
		return fmt.Errorf("only the round master can select the letter: %w", ErrUnauthorized)
	}
	if !model.IsAllowedLetter(letter, state.Config.ExcludedLetters) {
		return fmt.Errorf("letter %q is not allowed: %w", letter, ErrPreconditionFailed)
	}

	return s.beginRound(ctx, state, strings.ToUpper(letter))
}

// BeginRound starts the next round, drawing a random letter when none is
// given. Exposed for the random letter-selection mode.
func (s *GameService) BeginRound(ctx context.Context, roomCode, letter string) error {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		return err
	}
	if state.Phase != model.PhaseLetterSelection {
		return fmt.Errorf("cannot begin round in phase %s: %w", state.Phase, ErrInvalidPhase)
	}
	return s.beginRound(ctx, state, letter)
}

// beginRound creates the round record, enters the playing phase, and arms
// the timer. Caller holds the room lock.
func (s *GameService) beginRound(ctx context.Context, state *model.GameState, letter string) error {
	if letter == "" {
		letter = model.RandomLetter(state.Config.ExcludedLetters)
	}

	now := time.Now()
	round := &model.Round{
		RoundNumber:   len(state.Rounds) + 1,
		Letter:        letter,
		Categories:    append([]string(nil), state.Config.Categories...),
		TimeLimitSec:  state.Config.RoundTimeLimitSec,
		StartTime:     now,
		Deadline:      now.Add(time.Duration(state.Config.RoundTimeLimitSec) * time.Second),
		RoundMasterID: state.CurrentRoundMaster(),
		Answers:       map[string]model.PlayerAnswers{},
		Scores:        map[string]int{},
	}

	state.CurrentRound = round
	if err := s.transition(state, model.PhasePlaying); err != nil {
		return err
	}
	if err := s.games.Set(ctx, state.RoomCode, state); err != nil {
		return err
	}

	log.Printf("round started: room=%s round=%d letter=%s", state.RoomCode, round.RoundNumber, letter)
	s.broadcast(state.RoomCode, EventRoundStarted, map[string]interface{}{
		"round":     round,
		"gameState": state,
	})

	if err := s.timer.Start(state.RoomCode, round.RoundNumber, round.Deadline, s.handleRoundExpiry); err != nil {
		return err
	}
	return nil
}

// SubmitAnswers records one player's answers for the current round.
// Submission is create-only: a second call for the same round fails with
// a conflict and leaves the stored submission untouched. If this submission
// is the last one pending, the round closes immediately.
func (s *GameService) SubmitAnswers(ctx context.Context, roomCode, playerID string, answers map[string]string) (*model.PlayerAnswers, error) {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if state.Phase != model.PhasePlaying || state.CurrentRound == nil {
		return nil, fmt.Errorf("answer submission not allowed in phase %s: %w", state.Phase, ErrInvalidPhase)
	}
	if !s.isPlayer(state, playerID) {
		return nil, fmt.Errorf("player %s not in game: %w", playerID, ErrNotFound)
	}
	if _, exists := state.CurrentRound.Answers[playerID]; exists {
		return nil, fmt.Errorf("answers already submitted this round: %w", ErrConflict)
	}

	submission := buildSubmission(playerID, answers, state.CurrentRound.Categories, state.CurrentRound.Letter)
	state.CurrentRound.Answers[playerID] = submission
	if err := s.games.Set(ctx, roomCode, state); err != nil {
		return nil, err
	}

	log.Printf("answers submitted: room=%s round=%d player=%s complete=%t",
		roomCode, state.CurrentRound.RoundNumber, playerID, submission.IsComplete)
	s.broadcast(roomCode, EventAnswersSubmitted, map[string]interface{}{
		"playerId":       playerID,
		"submittedAt":    submission.SubmittedAt,
		"playersPending": state.PendingPlayers(),
	})

	if state.AllSubmitted() {
		if err := s.closeRoundWithRecovery(ctx, state); err != nil {
			return nil, err
		}
	}
	return &submission, nil
}

// buildSubmission normalizes raw answers per category: trims whitespace,
// marks the submission complete when no category is empty, and records
// letter validity per answer
func buildSubmission(playerID string, answers map[string]string, categories []string, letter string) model.PlayerAnswers {
	processed := make(map[string]string, len(categories))
	complete := true
	validCount := 0
	invalidCount := 0
	prefix := strings.ToLower(letter)
	for _, category := range categories {
		answer := strings.TrimSpace(answers[category])
		processed[category] = answer
		if answer == "" {
			complete = false
			continue
		}
		if strings.HasPrefix(strings.ToLower(answer), prefix) {
			validCount++
		} else {
			invalidCount++
		}
	}
	return model.PlayerAnswers{
		PlayerID:           playerID,
		Answers:            processed,
		SubmittedAt:        time.Now(),
		IsComplete:         complete,
		ValidAnswerCount:   validCount,
		InvalidAnswerCount: invalidCount,
	}
}

// handleRoundExpiry is the timer callback. The round number guards against
// a stale expiry firing after the round already closed and a new one began.
func (s *GameService) handleRoundExpiry(roomCode string, roundNumber int) {
	ctx := context.Background()
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		log.Printf("round expiry: room=%s: %v", roomCode, err)
		return
	}
	if state.Phase != model.PhasePlaying || state.CurrentRound == nil ||
		state.CurrentRound.RoundNumber != roundNumber {
		// Lost the race against the last submission; the round is closed
		return
	}

	if err := s.closeRoundWithRecovery(ctx, state); err != nil {
		log.Printf("round expiry: room=%s round=%d: %v", roomCode, roundNumber, err)
	}
}

// ForceEndRound closes the current round early. Allowed for the room
// creator and the current round master.
func (s *GameService) ForceEndRound(ctx context.Context, roomCode, playerID string) error {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		return err
	}
	if state.Phase != model.PhasePlaying || state.CurrentRound == nil {
		return fmt.Errorf("no round in progress: %w", ErrInvalidPhase)
	}

	room, err := s.roomSvc.GetRoom(ctx, roomCode)
	if err != nil {
		return err
	}
	authorized := state.CurrentRound.RoundMasterID == playerID ||
		(room != nil && room.CreatorID == playerID)
	if !authorized {
		return fmt.Errorf("only the round master or room creator can end the round: %w", ErrUnauthorized)
	}

	return s.closeRoundWithRecovery(ctx, state)
}

// closeRoundWithRecovery closes the round, retrying a failed close once and
// ending the game if the retry also fails; a room stuck in the playing phase
// with its timer already cancelled has no remaining trigger, so escalation is
// the only way out. Caller holds the room lock.
func (s *GameService) closeRoundWithRecovery(ctx context.Context, state *model.GameState) error {
	err := s.closeRound(ctx, state)
	if err == nil {
		return nil
	}
	log.Printf("round close failed, retrying: room=%s: %v", state.RoomCode, err)
	if err = s.closeRound(ctx, state); err == nil {
		return nil
	}
	log.Printf("round close retry failed, ending game: room=%s: %v", state.RoomCode, err)
	s.broadcast(state.RoomCode, EventGameError, map[string]interface{}{
		"error": "round processing failed; the game is being ended",
	})
	if endErr := s.finishGame(ctx, state); endErr != nil {
		log.Printf("forced game end failed: room=%s: %v", state.RoomCode, endErr)
		return err
	}
	return nil
}

// closeRound runs the back half of a round: cancel the timer, validate,
// score, and show results. Each step persists before its side effects are
// kept, and a failed step rolls its in-memory changes back, so a retry
// resumes where the previous attempt stopped instead of repeating finished
// work. Caller holds the room lock; the phase check at every trigger site
// makes this exactly-once.
func (s *GameService) closeRound(ctx context.Context, state *model.GameState) error {
	round := state.CurrentRound
	if round == nil {
		return fmt.Errorf("no round to close: %w", ErrInvalidPhase)
	}
	s.timer.Cancel(state.RoomCode)

	if round.EndTime == nil {
		now := time.Now()
		round.EndTime = &now
		if err := s.transition(state, model.PhaseValidation); err != nil {
			round.EndTime = nil
			return err
		}
		if err := s.games.Set(ctx, state.RoomCode, state); err != nil {
			round.EndTime = nil
			state.Phase = model.PhasePlaying
			return err
		}

		log.Printf("round ended: room=%s round=%d submissions=%d",
			state.RoomCode, round.RoundNumber, len(round.Answers))
		s.broadcast(state.RoomCode, EventRoundEnded, map[string]interface{}{
			"round": round,
		})
	}

	if round.Validation == nil {
		// Validation may block on external providers; only this room waits
		results := s.pipeline.ValidateRound(ctx, state.RoomCode, round, state.Config.ValidationMode)
		round.Validation = results
		if err := s.transition(state, model.PhaseScoring); err != nil {
			round.Validation = nil
			return err
		}
		if err := s.games.Set(ctx, state.RoomCode, state); err != nil {
			round.Validation = nil
			state.Phase = model.PhaseValidation
			return err
		}
	}

	roundScores, details := s.scoring.ScoreRound(round, state.RoundMasters)
	round.Scores = roundScores

	// Fold totals, append the round, and clear the current slot in the same
	// step that persists them; a failed write rolls all three back so a
	// retry cannot double-count
	if err := s.transition(state, model.PhaseRoundResults); err != nil {
		return err
	}
	state.Rounds = append(state.Rounds, *round)
	state.CurrentRound = nil
	for playerID, score := range roundScores {
		state.Scores[playerID] += score
	}
	if err := s.games.Set(ctx, state.RoomCode, state); err != nil {
		state.Rounds = state.Rounds[:len(state.Rounds)-1]
		state.CurrentRound = round
		for playerID, score := range roundScores {
			state.Scores[playerID] -= score
		}
		state.Phase = model.PhaseScoring
		return err
	}

	log.Printf("scores calculated: room=%s round=%d", state.RoomCode, round.RoundNumber)
	s.broadcast(state.RoomCode, EventScoresCalculated, map[string]interface{}{
		"roundNumber": round.RoundNumber,
		"roundScores": roundScores,
		"totalScores": state.Scores,
		"details":     details,
	})

	if s.resultsDelay >= 0 {
		roomCode := state.RoomCode
		time.AfterFunc(s.resultsDelay, func() {
			if err := s.AdvanceOrEnd(context.Background(), roomCode); err != nil {
				log.Printf("advance failed: room=%s: %v", roomCode, err)
			}
		})
	}
	return nil
}

// AdvanceOrEnd moves from round results to the next round, or ends the game
// once the configured round count is reached
func (s *GameService) AdvanceOrEnd(ctx context.Context, roomCode string) error {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		return err
	}
	if state.Phase != model.PhaseRoundResults {
		return fmt.Errorf("cannot advance in phase %s: %w", state.Phase, ErrInvalidPhase)
	}

	if state.Config.MaxRounds > 0 && len(state.Rounds) >= state.Config.MaxRounds {
		return s.finishGame(ctx, state)
	}

	// Next round master, wrapping around the rotation
	state.RoundMasterIndex = (state.RoundMasterIndex + 1) % len(state.RoundMasters)

	if err := s.transition(state, model.PhaseLetterSelection); err != nil {
		return err
	}

	if state.Config.LetterSelectionMode == model.LetterPlayerChoice {
		if err := s.games.Set(ctx, roomCode, state); err != nil {
			return err
		}
		s.broadcast(roomCode, EventSelectLetter, map[string]interface{}{
			"roundMasterId": state.CurrentRoundMaster(),
			"roundNumber":   len(state.Rounds) + 1,
		})
		return nil
	}

	return s.beginRound(ctx, state, "")
}

// EndGame ends the game on the room creator's request
func (s *GameService) EndGame(ctx context.Context, roomCode, playerID string) error {
	lock := s.roomLock(roomCode)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadActive(ctx, roomCode)
	if err != nil {
		return err
	}

	room, err := s.roomSvc.GetRoom(ctx, roomCode)
	if err != nil {
		return err
	}
	if room == nil || room.CreatorID != playerID {
		return fmt.Errorf("only the room creator can end the game: %w", ErrUnauthorized)
	}

	return s.finishGame(ctx, state)
}

// finishGame is the terminal transition, legal from any non-terminal phase.
// Caller holds the room lock.
func (s *GameService) finishGame(ctx context.Context, state *model.GameState) error {
	if err := s.transition(state, model.PhaseGameEnded); err != nil {
		return err
	}

	s.timer.Cancel(state.RoomCode)

	now := time.Now()
	state.Winner = s.scoring.Winner(state)
	state.EndTime = &now
	state.IsActive = false
	state.CurrentRound = nil
	if err := s.games.Set(ctx, state.RoomCode, state); err != nil {
		return err
	}

	// In-flight voting tallies die with the game
	if err := s.pipeline.ClearRoomVotes(ctx, state.RoomCode); err != nil {
		log.Printf("room %s: vote tally sweep failed: %v", state.RoomCode, err)
	}

	room, err := s.roomSvc.GetRoom(ctx, state.RoomCode)
	if err != nil {
		log.Printf("room %s: lookup failed at game end: %v", state.RoomCode, err)
	}

	playerNames := map[string]string{}
	if room != nil {
		for id, p := range room.Players {
			playerNames[id] = p.Name
		}
	}
	finalScores := s.scoring.FinalScores(state, playerNames)

	log.Printf("game ended: room=%s winner=%s rounds=%d", state.RoomCode, state.Winner, len(state.Rounds))
	s.broadcast(state.RoomCode, EventGameEnded, map[string]interface{}{
		"finalScores": finalScores,
		"winner":      state.Winner,
		"gameStats": map[string]interface{}{
			"totalRounds":     len(state.Rounds),
			"gameDurationSec": int(now.Sub(state.StartTime).Seconds()),
		},
	})

	// Persistence failures are logged, never fatal; the ended transition
	// has already been broadcast
	if room != nil {
		history := &repository.GameHistory{
			GameID:      state.GameID,
			RoomCode:    state.RoomCode,
			CreatorID:   room.CreatorID,
			Players:     room.PlayersInJoinOrder(),
			Config:      state.Config,
			Rounds:      state.Rounds,
			FinalScores: finalScores,
			Winner:      state.Winner,
			StartTime:   state.StartTime,
			EndTime:     now,
		}
		if err := s.history.SaveCompletedGame(ctx, history); err != nil {
			log.Printf("room %s: game history save failed: %v", state.RoomCode, err)
		}
		if err := s.roomSvc.SetStatus(ctx, state.RoomCode, model.RoomWaiting); err != nil {
			log.Printf("room %s: status reset failed: %v", state.RoomCode, err)
		}
	}
	return nil
}

// GetGameState returns the current state snapshot for a room
func (s *GameService) GetGameState(ctx context.Context, roomCode string) (*model.GameState, error) {
	state, err := s.games.Get(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("game for room %s: %w", roomCode, ErrNotFound)
	}
	return state, nil
}

// SubmitVote records a player's validity vote and notifies the room
func (s *GameService) SubmitVote(ctx context.Context, roomCode, requestID, voterID string, isValid bool) error {
	tally, err := s.pipeline.SubmitVote(ctx, requestID, voterID, isValid)
	if err != nil {
		return err
	}
	s.broadcast(roomCode, EventVoteRecorded, map[string]interface{}{
		"requestId": requestID,
		"votes":     len(tally.Votes),
	})
	return nil
}

// ResumeActiveGames recovers round deadlines after a restart. The deadline
// lives inside game state, so any round past its deadline closes
// immediately and any round still inside its window gets a fresh timer.
func (s *GameService) ResumeActiveGames(ctx context.Context) error {
	codes, err := s.games.ActiveRoomCodes(ctx)
	if err != nil {
		return err
	}

	for _, roomCode := range codes {
		lock := s.roomLock(roomCode)
		lock.Lock()

		state, err := s.games.Get(ctx, roomCode)
		if err != nil || state == nil || !state.IsActive {
			lock.Unlock()
			continue
		}
		if state.Phase != model.PhasePlaying || state.CurrentRound == nil {
			lock.Unlock()
			continue
		}

		round := state.CurrentRound
		if time.Now().After(round.Deadline) {
			log.Printf("resume: deadline already passed, closing round: room=%s round=%d",
				roomCode, round.RoundNumber)
			if err := s.closeRoundWithRecovery(ctx, state); err != nil {
				log.Printf("resume close failed: room=%s: %v", roomCode, err)
			}
		} else {
			log.Printf("resume: re-arming timer: room=%s round=%d remaining=%s",
				roomCode, round.RoundNumber, time.Until(round.Deadline).Round(time.Second))
			if err := s.timer.Start(roomCode, round.RoundNumber, round.Deadline, s.handleRoundExpiry); err != nil {
				log.Printf("resume timer arm failed: room=%s: %v", roomCode, err)
			}
		}
		lock.Unlock()
	}
	return nil
}

// loadActive fetches a room's game state, requiring an active game
func (s *GameService) loadActive(ctx context.Context, roomCode string) (*model.GameState, error) {
	state, err := s.games.Get(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("game for room %s: %w", roomCode, ErrNotFound)
	}
	if !state.IsActive {
		return nil, fmt.Errorf("game for room %s has ended: %w", roomCode, ErrInvalidPhase)
	}
	return state, nil
}

func (s *GameService) isPlayer(state *model.GameState, playerID string) bool {
	for _, id := range state.RoundMasters {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *GameService) broadcast(roomCode, event string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(roomCode, event, payload)
	}
}
