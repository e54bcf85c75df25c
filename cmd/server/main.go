package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/config"
	"github.com/nirwairkumar/nkc-assess-backend/internal/database"
	"github.com/nirwairkumar/nkc-assess-backend/internal/handler"
	"github.com/nirwairkumar/nkc-assess-backend/internal/logger"
	"github.com/nirwairkumar/nkc-assess-backend/internal/repository"
	"github.com/nirwairkumar/nkc-assess-backend/internal/router"
	"github.com/nirwairkumar/nkc-assess-backend/internal/service"
	"github.com/nirwairkumar/nkc-assess-backend/internal/store"
	"github.com/nirwairkumar/nkc-assess-backend/internal/validator"
	"github.com/nirwairkumar/nkc-assess-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NKC Assess Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	testRepo := repository.NewTestRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Stores ─────────────────────────────────────────────
	snapshots := store.NewRedisSnapshotStore(rdb)
	liveness := store.NewRedisLivenessStore(rdb, cfg.LivenessTTL)
	violationQueue := store.NewRedisViolationQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	violationSink := service.NewQueueViolationSink(violationQueue)
	sessionService := service.NewSessionService(testRepo, attemptRepo, snapshots, liveness, violationSink, rdb, log)
	leaderboardService := service.NewLeaderboardService(testRepo, attemptRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session:     handler.NewSessionHandler(sessionService),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService),
		WS:          handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	snapshotWorker := worker.NewSnapshotWorker(pool, rdb, log)

	go violationWorker.Start(workerCtx)
	go snapshotWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Abort live sessions. Durable snapshots mean candidates resume
	// where they left off after the restart.
	sessionService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
