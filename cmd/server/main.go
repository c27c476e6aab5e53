package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lettersprint/internal/cache"
	"lettersprint/internal/config"
	"lettersprint/internal/repository"
	"lettersprint/internal/service"
	"lettersprint/internal/transport/rest"
	"lettersprint/internal/transport/ws"
	"lettersprint/internal/validation"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// AI judge settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Judge Config:")
	log.Printf("  Primary:   %s", aiConfig.Primary.Model)
	log.Printf("  Secondary: %s", aiConfig.Secondary.Model)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:   configured")
	} else {
		log.Println("  API Key:   NOT SET (falling back to player voting)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	historyRepo := repository.NewHistoryRepo(db)
	dictRepo := repository.NewDictionaryRepo(db)

	// Initialize caches
	gameCache := cache.NewGameCache(rdb)
	roomCache := cache.NewRoomCache(rdb)
	voteCache := cache.NewVoteCache(rdb)
	verdictCache := cache.NewVerdictCache(rdb)

	// Initialize services
	pipeline := validation.NewPipeline(dictRepo, voteCache, verdictCache, aiConfig)
	scoringSvc := service.NewScoringService(service.DefaultScoringConfig())
	roundTimer := service.NewRoundTimer(wsHub)
	roomSvc := service.NewRoomService(roomCache)
	gameSvc := service.NewGameService(gameCache, roomSvc, pipeline, scoringSvc, historyRepo, roundTimer)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	roomSvc.SetBroadcaster(wsHub)
	gameSvc.SetBroadcaster(wsHub)

	// Re-arm timers for rounds that were in flight when the process stopped
	if err := gameSvc.ResumeActiveGames(ctx); err != nil {
		log.Printf("Warning: resume of active games failed: %v", err)
	}

	// Create router with container
	container := &rest.Container{
		RoomService: roomSvc,
		GameService: gameSvc,
		History:     historyRepo,
		Dictionary:  dictRepo,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/start")
		log.Println("  POST /v1/rooms/{code}/answers")
		log.Println("  POST /v1/rooms/{code}/votes")
		log.Println("  GET  /v1/rooms/{code}/game")
		log.Println("  GET  /v1/history/rooms/{code}")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
