package handlers

import (
	"database/sql"

	"github.com/gabriel/starfield/internal/rating"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// ratingTypeName is the type every star field is exposed as in the query API.
const ratingTypeName = "Int"

type schemaArgument struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Nullable    bool   `json:"nullable"`
	Description string `json:"description"`
}

type fieldSchema struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Nullable    bool           `json:"nullable"`
	Description string         `json:"description"`
	MaxStars    int            `json:"maxStars"`
	Argument    schemaArgument `json:"argument"`
}

type SchemaHandler struct {
	fields *repository.FieldRepository
}

func NewSchemaHandler(db *sql.DB) *SchemaHandler {
	return &SchemaHandler{fields: repository.NewFieldRepository(db)}
}

// Fields describes every star field as a nullable integer, both as a readable
// property and as the argument that sets it.
func (h *SchemaHandler) Fields(c *fiber.Ctx) error {
	fields, err := h.fields.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list fields"})
	}

	items := make([]fieldSchema, 0, len(fields))
	for _, field := range fields {
		description := rating.MutationDescription(field.MaxStars)
		items = append(items, fieldSchema{
			Name:        field.Handle,
			Type:        ratingTypeName,
			Nullable:    true,
			Description: description,
			MaxStars:    field.MaxStars,
			Argument: schemaArgument{
				Name:        field.Handle,
				Type:        ratingTypeName,
				Nullable:    true,
				Description: description,
			},
		})
	}

	return c.JSON(fiber.Map{"items": items})
}
