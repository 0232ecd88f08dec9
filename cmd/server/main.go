package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/database"
	"github.com/examhall/examhall-backend/internal/gateway"
	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/handler"
	"github.com/examhall/examhall-backend/internal/logger"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/router"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/validator"
	"github.com/examhall/examhall-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting ExamHall Backend")

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
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	proctorRepo := repository.NewProctorRepository(pool)
	trainingRepo := repository.NewTrainingRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	execClient := gateway.NewClient(cfg.ExecGatewayURL, cfg.ExecGatewayTimeout, log)
	engine := grading.NewEngine(execClient, log)

	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService)
	examService := service.NewExamService(examRepo, rdb, log)
	submissionService := service.NewSubmissionService(examRepo, resultRepo, engine, log)
	resultService := service.NewResultService(resultRepo)
	execService := service.NewExecService(execClient, log)
	trainingService := service.NewTrainingService(trainingRepo, cfg, log)
	scheduleService := service.NewScheduleService(scheduleRepo, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, adminRepo),
		Exam:          handler.NewExamHandler(examService, proctorRepo),
		StudentPortal: handler.NewStudentPortalHandler(examService),
		Submission:    handler.NewSubmissionHandler(submissionService, resultService),
		Exec:          handler.NewExecHandler(execService),
		Proctor:       handler.NewProctorHandler(rdb, examService, submissionService, log, cfg.AllowedOrigins),
		Training:      handler.NewTrainingHandler(trainingService),
		Schedule:      handler.NewScheduleHandler(scheduleService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	go violationWorker.Start(workerCtx)

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
