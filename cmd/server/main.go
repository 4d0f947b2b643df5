package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillswap-backend/internal/config"
	"skillswap-backend/internal/database"
	"skillswap-backend/internal/handlers"
	"skillswap-backend/internal/lessons"
	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/repository"
	"skillswap-backend/internal/router"
	"skillswap-backend/internal/services"
	"skillswap-backend/internal/websocket"
	"skillswap-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting SkillSwap Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	ratingRepo := repository.NewRatingRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	lessonStore := repository.NewLessonStore(pool)

	// ──── Step 5: Initialize Lesson Engine ────
	loc, err := time.LoadLocation(cfg.LessonTimezone)
	if err != nil {
		log.Fatalf("✗ Invalid LESSON_TIMEZONE %q: %v", cfg.LessonTimezone, err)
	}
	engine := lessons.NewEngine(lessonStore, userRepo, lessons.NewClock(loc))
	log.Printf("✓ Lesson engine initialized (timezone: %s)", cfg.LessonTimezone)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	peopleHandler := handlers.NewPeopleHandler(userRepo, ratingRepo)
	chatHandler := handlers.NewChatHandler(messageRepo, userRepo, redisClients.Queue)
	lessonHandler := handlers.NewLessonHandler(engine, userRepo, redisClients.Queue)

	// ──── Step 6: Start Email Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, emailService, cfg.EmailWorkers)
	workerPool.Start()

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		userHandler,
		peopleHandler,
		chatHandler,
		lessonHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ SkillSwap Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
