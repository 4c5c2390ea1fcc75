package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/database"
	"github.com/licensa/dlexam-backend/internal/handler"
	"github.com/licensa/dlexam-backend/internal/logger"
	"github.com/licensa/dlexam-backend/internal/monitoring"
	"github.com/licensa/dlexam-backend/internal/repository"
	"github.com/licensa/dlexam-backend/internal/router"
	"github.com/licensa/dlexam-backend/internal/service"
	"github.com/licensa/dlexam-backend/internal/validator"
	"github.com/licensa/dlexam-backend/internal/worker"
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
		Msg("Starting DL Exam Backend")

	// ─── Initialize Validator and Metrics ──────────────────────────────
	validator.Setup()
	monitoring.Init()

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
	questionRepo := repository.NewQuestionRepository(pool)
	configRepo := repository.NewTestConfigRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	multiStageRepo := repository.NewMultiStageRepository(pool)
	stageResultRepo := repository.NewStageResultRepository(pool)
	criterionRepo := repository.NewCriterionRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	auditor := service.NewAuditor(rdb, log)
	selector := service.NewQuestionSelector(questionRepo)
	sessionService := service.NewSessionService(
		sessionRepo, resultRepo, candidateRepo, appointmentRepo, configRepo,
		selector, auditor, rdb, cfg.SubmitGrace, log,
	)
	stageService := service.NewStageService(
		multiStageRepo, stageResultRepo, criterionRepo, userRepo,
		candidateRepo, appointmentRepo, configRepo, sessionService, auditor, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, candidateRepo, userRepo, log),
		Session:    handler.NewTestSessionHandler(sessionService),
		MultiStage: handler.NewMultiStageHandler(stageService),
		WS:         handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
