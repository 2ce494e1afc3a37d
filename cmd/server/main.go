package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/database"
	"github.com/studika/gradebook-backend/internal/handler"
	"github.com/studika/gradebook-backend/internal/logger"
	"github.com/studika/gradebook-backend/internal/repository"
	"github.com/studika/gradebook-backend/internal/router"
	"github.com/studika/gradebook-backend/internal/service"
	"github.com/studika/gradebook-backend/internal/validator"
	"github.com/studika/gradebook-backend/internal/worker"
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
		Msg("Starting Gradebook Backend")

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
	principalRepo := repository.NewPrincipalRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	markRepo := repository.NewMarkRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	auditService := service.NewAuditService(auditRepo, rdb, log)
	authService := service.NewAuthService(cfg, principalRepo, sessionRepo, auditService, rdb, log)
	permissionService := service.NewPermissionService(assignmentRepo, markRepo)
	gradeService := service.NewGradeService(subjectRepo, studentRepo, markRepo, auditService, cfg, rdb, log)
	subjectService := service.NewSubjectService(subjectRepo, auditService, log)
	studentService := service.NewStudentService(studentRepo, auditService, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, principalRepo, subjectRepo, auditService, log)
	principalService := service.NewPrincipalService(principalRepo, authService, auditService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Grade:      handler.NewGradeHandler(gradeService, permissionService, auditService),
		Subject:    handler.NewSubjectHandler(subjectService),
		Student:    handler.NewStudentHandler(studentService),
		Assignment: handler.NewAssignmentHandler(assignmentService),
		AdminUser:  handler.NewAdminUserHandler(principalService),
		Audit:      handler.NewAuditHandler(auditService, rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	touchWorker := worker.NewTouchWorker(pool, rdb, log)
	auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)

	go touchWorker.Start(workerCtx)
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
