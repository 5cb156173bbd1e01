package handlers

import (
	"database/sql"

	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gabriel/starfield/internal/search"
	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	index   *search.Index
	entries *repository.EntryRepository
}

func NewSearchHandler(db *sql.DB, index *search.Index) *SearchHandler {
	return &SearchHandler{index: index, entries: repository.NewEntryRepository(db)}
}

// Search returns the matching entries in relevance order. Hits whose entry was
// deleted since the last reindex are skipped.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	if h.index == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "search index unavailable"})
	}

	result, err := h.index.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "search failed"})
	}

	items := make([]models.Entry, 0, len(result.EntryIDs))
	for _, id := range result.EntryIDs {
		entry, err := h.entries.GetByID(id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load entry"})
		}
		if entry != nil {
			items = append(items, *entry)
		}
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": result.Total,
	})
}
