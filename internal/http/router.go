package http

import (
	"database/sql"
	"log/slog"

	"github.com/gabriel/starfield/internal/config"
	"github.com/gabriel/starfield/internal/http/handlers"
	"github.com/gabriel/starfield/internal/notifications"
	"github.com/gabriel/starfield/internal/search"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the long-lived collaborators shared with the rest of the process.
// A nil Index gets a fresh in-memory one built from the database; a nil
// Notifier sends nothing.
type Deps struct {
	Index    *search.Index
	Notifier notifications.Notifier
	Logger   *slog.Logger
}

func NewServer(cfg config.Config, db *sql.DB) *fiber.App {
	return NewServerWithDeps(cfg, db, Deps{})
}

func NewServerWithDeps(cfg config.Config, db *sql.DB, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	index := deps.Index
	if index == nil {
		created, err := search.NewIndex(logger)
		if err != nil {
			logger.Warn("search index unavailable", "error", err)
		} else {
			index = created
		}
	}

	writer := handlers.NewRatingWriter(db, index, deps.Notifier, logger)
	health := handlers.NewHealthHandler(db, index)
	entries := handlers.NewEntriesHandler(db, writer)
	fields := handlers.NewFieldsHandler(db, writer)
	settings := handlers.NewSettingsHandler(db)
	schema := handlers.NewSchemaHandler(db)
	searchHandler := handlers.NewSearchHandler(db, index)
	dashboard := handlers.NewDashboardHandler(db, writer)

	if deps.Index == nil && index != nil {
		if err := writer.ReindexAll(); err != nil {
			logger.Warn("initial search index build failed", "error", err)
		}
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	})
	app.Get("/dashboard", dashboard.Page)
	app.Post("/dashboard/entries", dashboard.CreateEntryFromForm)
	app.Get("/dashboard/entries/:id", dashboard.EntryView)
	app.Get("/dashboard/entries/:id/edit", dashboard.EditEntry)
	app.Post("/dashboard/entries/:id", dashboard.UpdateEntryFromForm)
	app.Post("/dashboard/entries/:id/delete", dashboard.DeleteEntryFromForm)
	app.Get("/dashboard/settings", dashboard.SettingsPage)
	app.Post("/dashboard/settings", dashboard.SettingsFromForm)
	app.Post("/dashboard/fields", dashboard.CreateFieldFromForm)
	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/settings", settings.Get)
	v1.Put("/settings", settings.Update)
	v1.Get("/fields", fields.List)
	v1.Post("/fields", fields.Create)
	v1.Get("/fields/options", fields.Options)
	v1.Get("/fields/:handle", fields.Get)
	v1.Put("/fields/:handle", fields.Update)
	v1.Delete("/fields/:handle", fields.Delete)
	v1.Get("/schema/fields", schema.Fields)
	v1.Get("/search", searchHandler.Search)
	v1.Post("/entries", entries.Create)
	v1.Get("/entries", entries.List)
	v1.Get("/entries/:id", entries.GetByID)
	v1.Delete("/entries/:id", entries.Delete)
	v1.Put("/entries/:id/ratings/:handle", entries.SetRating)

	return app
}
