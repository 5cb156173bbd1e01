package handlers

import (
	"database/sql"
	"time"

	"github.com/gabriel/starfield/internal/search"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	db    *sql.DB
	index *search.Index
}

func NewHealthHandler(db *sql.DB, index *search.Index) *HealthHandler {
	return &HealthHandler{db: db, index: index}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := h.db.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     "down",
			"time":   now,
		})
	}

	body := fiber.Map{
		"status": "ok",
		"db":     "up",
		"time":   now,
	}
	if h.index != nil {
		if count, err := h.index.Count(); err == nil {
			body["indexedEntries"] = count
		}
	}
	return c.JSON(body)
}
