package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/database"
	"github.com/emergency0committee-hub/eec-backend/internal/handler"
	"github.com/emergency0committee-hub/eec-backend/internal/logger"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
	"github.com/emergency0committee-hub/eec-backend/internal/router"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
	"github.com/emergency0committee-hub/eec-backend/internal/validator"
	"github.com/emergency0committee-hub/eec-backend/internal/worker"
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
		Msg("Starting EEC Backend")

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
	submissionRepo := repository.NewSubmissionRepository(pool)
	answerRepo := repository.NewSessionAnswerRepository(pool)
	accessCodeRepo := repository.NewAccessCodeRepository(pool)
	bankRepo := repository.NewBankRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	bankService := service.NewBankService(bankRepo, rdb, cfg, log)
	submissionQueue := service.NewSubmissionQueue(rdb)
	sessionService := service.NewSessionService(cfg, bankService, answerRepo, submissionQueue, rdb, log)
	accessService := service.NewAccessService(accessCodeRepo, cfg, log)
	resultService := service.NewResultService(submissionRepo, sessionService, log)
	settingService := service.NewSettingService(settingRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Gate:    handler.NewGateHandler(accessService, sessionService, authService, log),
		Portal:  handler.NewPortalHandler(sessionService, bankService, log),
		Auth:    handler.NewAuthHandler(authService, staffRepo, log),
		Codes:   handler.NewCodesHandler(accessService, log),
		Results: handler.NewResultsHandler(resultService, log),
		Setting: handler.NewSettingHandler(settingService, log),
		Bank:    handler.NewBankHandler(bankService, log),
		Monitor: handler.NewMonitorHandler(sessionService, log),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	autosaveWorker := worker.NewAutosaveWorker(answerRepo, rdb, log)
	submissionWorker := worker.NewSubmissionWorker(submissionRepo, answerRepo, rdb, log)

	go autosaveWorker.Start(workerCtx)
	go submissionWorker.Start(workerCtx)

	// ─── Start Session Ticker ─────────────────────────────────────────
	// One beat per second drives every live countdown; expiry force-submits
	// inside the beat.
	go sessionService.RunTicker(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the participant-safe bank into Redis BEFORE accepting traffic.
	if err := bankService.PrewarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop the ticker and workers, and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
