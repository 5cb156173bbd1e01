package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gabriel/starfield/internal/rating"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type createEntryRequest struct {
	Title string `json:"title"`
}

type EntriesHandler struct {
	entries *repository.EntryRepository
	fields  *repository.FieldRepository
	writer  *RatingWriter
}

func NewEntriesHandler(db *sql.DB, writer *RatingWriter) *EntriesHandler {
	return &EntriesHandler{
		entries: repository.NewEntryRepository(db),
		fields:  repository.NewFieldRepository(db),
		writer:  writer,
	}
}

func (h *EntriesHandler) Create(c *fiber.Ctx) error {
	var req createEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "title is required"})
	}

	created, err := h.entries.Create(title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to create entry"})
	}
	h.writer.Reindex(*created)

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *EntriesHandler) List(c *fiber.Ctx) error {
	handles, err := fieldHandles(h.fields)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list fields"})
	}

	options, err := readEntryQuery(c, "updated_at").options(handles)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	options.Limit = c.QueryInt("limit", 0)
	options.Offset = c.QueryInt("offset", 0)

	entries, err := h.entries.List(options)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list entries"})
	}

	return c.JSON(fiber.Map{"items": entries})
}

func (h *EntriesHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid entry id"})
	}

	entry, err := h.entries.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to get entry"})
	}
	if entry == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "entry not found"})
	}

	return c.JSON(entry)
}

func (h *EntriesHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid entry id"})
	}

	deleted, err := h.entries.Delete(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to delete entry"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "entry not found"})
	}
	h.writer.Unindex(id)

	return c.SendStatus(fiber.StatusNoContent)
}

// SetRating accepts {"value": <integer|null>}. Any other JSON type is refused
// here; integers outside the field's range are clamped, not refused.
func (h *EntriesHandler) SetRating(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid entry id"})
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}
	rawValue, present := body["value"]
	if !present {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "value is required"})
	}
	var value rating.Value
	if err := value.UnmarshalJSON(rawValue); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "value must be an integer or null"})
	}

	field, err := h.fields.GetByHandle(c.Params("handle"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to get field"})
	}
	if field == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "field not found"})
	}

	entry, err := h.entries.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to get entry"})
	}
	if entry == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "entry not found"})
	}

	updated, err := h.writer.Write(*entry, *field, value)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "entry not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save rating"})
	}

	return c.JSON(updated)
}
