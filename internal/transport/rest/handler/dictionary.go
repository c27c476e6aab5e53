package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lettersprint/internal/repository"
)

// DictionaryHandler manages category word lists
type DictionaryHandler struct {
	dict repository.DictionaryRepo
}

// NewDictionaryHandler creates a new dictionary handler
func NewDictionaryHandler(dict repository.DictionaryRepo) *DictionaryHandler {
	return &DictionaryHandler{dict: dict}
}

// AddWordsRequest is the request body for extending a category word list
type AddWordsRequest struct {
	Words []string `json:"words"`
}

// Words handles GET /v1/dictionary/{category}
func (h *DictionaryHandler) Words(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	words, err := h.dict.GetWords(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"words":    words,
		"count":    len(words),
	})
}

// AddWords handles POST /v1/dictionary/{category}/words
func (h *DictionaryHandler) AddWords(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	var req AddWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Words) == 0 {
		writeError(w, http.StatusBadRequest, "words is required")
		return
	}

	if err := h.dict.AddWords(r.Context(), category, req.Words); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"added":    len(req.Words),
	})
}
