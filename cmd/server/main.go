package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evaluia/examcore-backend/internal/config"
	"github.com/evaluia/examcore-backend/internal/database"
	"github.com/evaluia/examcore-backend/internal/handler"
	"github.com/evaluia/examcore-backend/internal/logger"
	"github.com/evaluia/examcore-backend/internal/mailer"
	"github.com/evaluia/examcore-backend/internal/netmon"
	"github.com/evaluia/examcore-backend/internal/queue"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/router"
	"github.com/evaluia/examcore-backend/internal/service"
	"github.com/evaluia/examcore-backend/internal/validator"
	"github.com/evaluia/examcore-backend/internal/worker"
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
		Msg("Starting ExamCore Backend")

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

	// ─── Durable Submission Queue ──────────────────────────────────────
	subQueue, err := queue.Open(cfg.QueuePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open submission queue")
	}

	// ─── Network Monitor ───────────────────────────────────────────────
	// The probe only runs while the store is considered offline. Prefer an
	// explicit probe URL when configured; fall back to pinging the pool.
	probe := netmon.PingProbe(pool)
	if cfg.StoreProbeURL != "" {
		probe = netmon.HTTPProbe(cfg.StoreProbeURL)
	}
	monitor := netmon.New(probe, cfg.ProbeInterval, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	sessionValidator := service.NewSessionValidator(log)
	sessionService := service.NewSessionService(sessionRepo, examRepo, testRepo, profileRepo, service.DefaultRetryPolicy(), log)
	reportDispatcher := service.NewRedisReportDispatcher(rdb)
	submissionService := service.NewSubmissionService(monitor, subQueue, sessionRepo, attemptRepo, assignmentRepo, profileRepo, reportDispatcher, log)

	mail, err := mailer.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize mailer")
	}
	credentialService := service.NewCredentialService(credentialRepo, profileRepo, examRepo, testRepo, mail, cfg.BcryptCost, log)

	reportService, err := service.NewReportService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize report service")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, credentialService, profileRepo, log),
		Portal:     handler.NewPortalHandler(sessionService, sessionValidator, submissionService),
		AdminExam:  handler.NewAdminExamHandler(examRepo),
		AdminTest:  handler.NewAdminTestHandler(testRepo),
		AdminUser:  handler.NewAdminUserHandler(profileRepo, assignmentRepo, authService),
		Credential: handler.NewCredentialHandler(credentialService, credentialRepo),
		Report:     handler.NewReportHandler(reportRepo),
		Ops:        handler.NewOpsHandler(monitor, subQueue, submissionService),
		WS:         handler.NewWSHandler(monitor, subQueue, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	replayWorker := worker.NewReplayWorker(monitor, submissionService, cfg.ReplayInterval, log)
	reportWorker := worker.NewReportWorker(rdb, sessionRepo, attemptRepo, reportRepo, reportService, log)

	go monitor.Run(workerCtx)
	go replayWorker.Start(workerCtx)
	go reportWorker.Start(workerCtx)

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
