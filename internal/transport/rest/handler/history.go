package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lettersprint/internal/repository"
)

// HistoryHandler serves completed-game records
type HistoryHandler struct {
	history repository.HistoryRepo
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history repository.HistoryRepo) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ByRoom handles GET /v1/history/rooms/{code}
func (h *HistoryHandler) ByRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	games, err := h.history.GetByRoomCode(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// ByPlayer handles GET /v1/history/players/{playerId}
func (h *HistoryHandler) ByPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	games, err := h.history.GetByPlayer(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}
