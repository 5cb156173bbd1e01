package handlers

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gabriel/starfield/internal/fielddefs"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type FieldsHandler struct {
	repo   *repository.FieldRepository
	writer *RatingWriter
}

func NewFieldsHandler(db *sql.DB, writer *RatingWriter) *FieldsHandler {
	return &FieldsHandler{repo: repository.NewFieldRepository(db), writer: writer}
}

func (h *FieldsHandler) List(c *fiber.Ctx) error {
	fields, err := h.repo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list fields"})
	}
	return c.JSON(fiber.Map{"items": fields})
}

func (h *FieldsHandler) Options(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": fielddefs.MaxStarsOptions()})
}

func (h *FieldsHandler) Get(c *fiber.Ctx) error {
	field, err := h.repo.GetByHandle(c.Params("handle"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to get field"})
	}
	if field == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "field not found"})
	}
	return c.JSON(field)
}

func (h *FieldsHandler) Create(c *fiber.Ctx) error {
	var definition fielddefs.Definition
	if err := c.BodyParser(&definition); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	if err := definition.NormalizeAndValidate(); err != nil {
		if handled, respErr := validationFailure(c, err); handled {
			return respErr
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.repo.Create(definition.Field())
	if errors.Is(err, repository.ErrDuplicateHandle) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to create field"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update replaces the settings of an existing field. The handle in the path
// wins over any handle in the body.
func (h *FieldsHandler) Update(c *fiber.Ctx) error {
	handle := strings.TrimSpace(c.Params("handle"))

	var definition fielddefs.Definition
	if err := c.BodyParser(&definition); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}
	definition.Handle = handle

	if err := definition.NormalizeAndValidate(); err != nil {
		if handled, respErr := validationFailure(c, err); handled {
			return respErr
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.repo.Update(handle, definition.Field())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to update field"})
	}
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "field not found"})
	}
	h.reindex(handle)

	return c.JSON(updated)
}

func (h *FieldsHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.repo.Delete(c.Params("handle"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to delete field"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "field not found"})
	}
	h.reindex(c.Params("handle"))
	return c.SendStatus(fiber.StatusNoContent)
}

// reindex refreshes every entry's keywords: a new maximum changes how stored
// ratings read, and a deleted field takes its ratings with it.
func (h *FieldsHandler) reindex(handle string) {
	if err := h.writer.ReindexAll(); err != nil {
		h.writer.logger.Warn("failed to reindex after field change", "field", handle, "error", err)
	}
}
