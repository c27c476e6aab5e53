package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lettersprint/internal/service"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// Start handles POST /v1/rooms/{code}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req PlayerActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	state, err := h.gameSvc.StartGame(r.Context(), code, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// SelectLetterRequest is the request body for the round master's letter choice
type SelectLetterRequest struct {
	PlayerID string `json:"playerId"`
	Letter   string `json:"letter"`
}

// SelectLetter handles POST /v1/rooms/{code}/letter
func (h *GameHandler) SelectLetter(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req SelectLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" || req.Letter == "" {
		writeError(w, http.StatusBadRequest, "playerId and letter are required")
		return
	}

	if err := h.gameSvc.SelectLetter(r.Context(), code, req.PlayerID, req.Letter); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"letter": req.Letter})
}

// SubmitAnswersRequest is the request body for a round submission
type SubmitAnswersRequest struct {
	PlayerID string            `json:"playerId"`
	Answers  map[string]string `json:"answers"`
}

// SubmitAnswers handles POST /v1/rooms/{code}/answers
func (h *GameHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req SubmitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	submission, err := h.gameSvc.SubmitAnswers(r.Context(), code, req.PlayerID, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submittedAt":        submission.SubmittedAt,
		"isComplete":         submission.IsComplete,
		"validAnswerCount":   submission.ValidAnswerCount,
		"invalidAnswerCount": submission.InvalidAnswerCount,
	})
}

// ForceEndRound handles POST /v1/rooms/{code}/round/end
func (h *GameHandler) ForceEndRound(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req PlayerActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	if err := h.gameSvc.ForceEndRound(r.Context(), code, req.PlayerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "round_ended"})
}

// End handles POST /v1/rooms/{code}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req PlayerActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	if err := h.gameSvc.EndGame(r.Context(), code, req.PlayerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "game_ended"})
}

// GetState handles GET /v1/rooms/{code}/game
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	state, err := h.gameSvc.GetGameState(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}
