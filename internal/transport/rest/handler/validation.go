package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lettersprint/internal/service"
)

// ValidationHandler handles answer-validation voting endpoints
type ValidationHandler struct {
	gameSvc *service.GameService
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(gameSvc *service.GameService) *ValidationHandler {
	return &ValidationHandler{gameSvc: gameSvc}
}

// VoteRequest is the request body for a validity vote
type VoteRequest struct {
	RequestID string `json:"requestId"`
	PlayerID  string `json:"playerId"`
	IsValid   bool   `json:"isValid"`
}

// Vote handles POST /v1/rooms/{code}/votes
func (h *ValidationHandler) Vote(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestID == "" || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "requestId and playerId are required")
		return
	}

	if err := h.gameSvc.SubmitVote(r.Context(), code, req.RequestID, req.PlayerID, req.IsValid); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "vote_recorded"})
}
