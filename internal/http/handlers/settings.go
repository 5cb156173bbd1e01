package handlers

import (
	"database/sql"

	"github.com/gabriel/starfield/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type updateSettingsRequest struct {
	AllowZeroStars *bool `json:"allowZeroStars"`
	ShowEmptyStars *bool `json:"showEmptyStars"`
}

type SettingsHandler struct {
	repo *repository.SettingsRepository
}

func NewSettingsHandler(db *sql.DB) *SettingsHandler {
	return &SettingsHandler{repo: repository.NewSettingsRepository(db)}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.repo.Get()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load settings"})
	}
	return c.JSON(settings)
}

// Update changes only the keys present in the body.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	settings, err := h.repo.Get()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load settings"})
	}
	if req.AllowZeroStars != nil {
		settings.AllowZeroStars = *req.AllowZeroStars
	}
	if req.ShowEmptyStars != nil {
		settings.ShowEmptyStars = *req.ShowEmptyStars
	}

	updated, err := h.repo.Update(settings)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save settings"})
	}
	return c.JSON(updated)
}
