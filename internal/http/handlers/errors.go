package handlers

import (
	"errors"
	"strconv"

	"github.com/gabriel/starfield/internal/validation"
	"github.com/gofiber/fiber/v2"
)

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// validationFailure writes a 400 with per-field messages when err carries a
// validation.Error and reports whether it did.
func validationFailure(c *fiber.Ctx, err error) (bool, error) {
	var validationErr *validation.Error
	if !errors.As(err, &validationErr) {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": validationErr.Message,
		"errors":  validationErr.Fields,
	})
}
