package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"lettersprint/internal/repository"
	"lettersprint/internal/service"
	"lettersprint/internal/transport/rest/handler"
	"lettersprint/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	RoomService *service.RoomService
	GameService *service.GameService
	History     repository.HistoryRepo
	Dictionary  repository.DictionaryRepo
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	roomHandler := handler.NewRoomHandler(c.RoomService)
	gameHandler := handler.NewGameHandler(c.GameService)
	voteHandler := handler.NewValidationHandler(c.GameService)
	historyHandler := handler.NewHistoryHandler(c.History)
	dictHandler := handler.NewDictionaryHandler(c.Dictionary)
	wsHandler := ws.NewHandler(c.WSHub, c.RoomService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Room lifecycle
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms", roomHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/ready", roomHandler.Ready).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/kick", roomHandler.Kick).Methods("POST", "OPTIONS")

	// Game lifecycle
	v1.HandleFunc("/rooms/{code}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/letter", gameHandler.SelectLetter).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/answers", gameHandler.SubmitAnswers).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/round/end", gameHandler.ForceEndRound).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/end", gameHandler.End).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/game", gameHandler.GetState).Methods("GET", "OPTIONS")

	// Validation voting
	v1.HandleFunc("/rooms/{code}/votes", voteHandler.Vote).Methods("POST", "OPTIONS")

	// Completed games
	v1.HandleFunc("/history/rooms/{code}", historyHandler.ByRoom).Methods("GET", "OPTIONS")
	v1.HandleFunc("/history/players/{playerId}", historyHandler.ByPlayer).Methods("GET", "OPTIONS")

	// Dictionary management
	v1.HandleFunc("/dictionary/{category}", dictHandler.Words).Methods("GET", "OPTIONS")
	v1.HandleFunc("/dictionary/{category}/words", dictHandler.AddWords).Methods("POST", "OPTIONS")

	// WebSocket route (player identity in query param)
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
