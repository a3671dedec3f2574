package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mansoorahamedsaaho/Validiant-Testing/config"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/audit"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/bulkimport"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/dispatch"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/metrics"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/repository"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for application metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	// Create the repository and make sure the tables exist.
	repo := repository.NewRepository(dtb)
	if err = repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Wire the audit sink, the dispatch service and the import pipeline.
	sink := audit.NewStoreSink(logger, repo)
	dispatcher := dispatch.NewService(logger, repo, sink, appMetrics)
	importer := bulkimport.NewImporter(logger, repo, sink, appMetrics)

	healthChecker := server.NewHealthChecker(logger, dtb)
	router := server.NewRouter(logger, dispatcher, importer, repo, appMetrics, reg, healthChecker,
		server.UploadLimits{
			MaxBytes: cfg.Upload.MaxSizeMB << 20,
			TmpDir:   cfg.Upload.TmpDir,
		})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Blocks until the context is canceled, then shuts down gracefully.
	server.Start(ctx, logger, router, cfg.HTTPPort)

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
			}),
		)

		logger.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return logger
}
