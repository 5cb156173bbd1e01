package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/starfield/internal/config"
	"github.com/gabriel/starfield/internal/database"
	"github.com/gabriel/starfield/internal/fielddefs"
	apihttp "github.com/gabriel/starfield/internal/http"
	"github.com/gabriel/starfield/internal/notifications"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gabriel/starfield/internal/scheduler"
	"github.com/gabriel/starfield/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open sqlite", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.ApplyMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if cfg.SeedDefaultData {
		if err := database.SeedDefaults(db); err != nil {
			slog.Error("failed to seed defaults", "error", err)
			os.Exit(1)
		}
	}

	definitions, defsErr := fielddefs.LoadFromDir(cfg.FieldsPath)
	if defsErr != nil {
		slog.Warn("field definitions loaded with warnings", "path", cfg.FieldsPath, "error", defsErr)
	}
	if synced, err := fielddefs.Sync(repository.NewFieldRepository(db), definitions, logger); err != nil {
		slog.Warn("field definitions synced with errors", "synced", synced, "error", err)
	} else if synced > 0 {
		slog.Info("field definitions synced", "count", synced)
	}

	notifier, err := notifications.New(cfg.RatingWebhookURL)
	if err != nil {
		slog.Error("failed to configure rating notifications", "error", err)
		os.Exit(1)
	}

	index, err := search.NewIndex(logger)
	if err != nil {
		slog.Error("failed to create search index", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	reindexer := scheduler.NewReindexer(
		repository.NewEntryRepository(db),
		index,
		scheduler.ReindexerConfig{
			Interval: time.Duration(cfg.ReindexMinutes) * time.Minute,
		},
		logger,
	)

	reindexCtx, reindexCancel := context.WithCancel(context.Background())
	if cfg.ReindexEnabled {
		reindexer.Start(reindexCtx)
	} else if err := reindexer.RunOnce(reindexCtx); err != nil {
		slog.Warn("initial search index build failed", "error", err)
	}

	app := apihttp.NewServerWithDeps(cfg, db, apihttp.Deps{
		Index:    index,
		Notifier: notifier,
		Logger:   logger,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	reindexCancel()
	reindexer.StopWait(2 * time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
