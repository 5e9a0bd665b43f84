package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/logging"
	"github.com/yukikurage/project-tracker-api/internal/mailer"
	"github.com/yukikurage/project-tracker-api/internal/metrics"
	"github.com/yukikurage/project-tracker-api/internal/server"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	deps := server.Dependencies{
		DB:     db,
		Config: cfg,
		Mailer: mailer.New(cfg, logger),
		Metrics: metrics.New(func() float64 {
			return float64(sqlDB.Stats().OpenConnections)
		}),
		Logger: logger,
	}

	// Initialize AI service
	if cfg.OpenAIAPIKey != "" {
		deps.Generator = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		logger.Warn("OPENAI_API_KEY is not set, task generation is disabled")
	}

	app := server.New(deps)

	sched, err := app.NewScheduler()
	if err != nil {
		return err
	}
	sched.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("Scheduler shutdown failed", "error", err)
	}
	return nil
}
