package fielddefs

import (
	"fmt"
	"strings"

	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/validation"
)

const DefaultMaxStars = 5

// Definition is the editable configuration of one star field, as written in a
// YAML definition file or submitted through the API.
type Definition struct {
	Handle       string `yaml:"handle" json:"handle" validate:"required,max=64,handle"`
	Name         string `yaml:"name" json:"name" validate:"required,max=255"`
	Instructions string `yaml:"instructions" json:"instructions" validate:"max=1000"`
	MaxStars     int    `yaml:"max_stars" json:"maxStars" validate:"required,oneof=1 3 5 10"`
}

type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// MaxStarsOptions lists the star counts a field may be configured with.
func MaxStarsOptions() []Option {
	return []Option{
		{Value: 1, Label: "1 star"},
		{Value: 3, Label: "3 stars"},
		{Value: 5, Label: "5 stars"},
		{Value: 10, Label: "10 stars"},
	}
}

var validator = validation.New()

func (d *Definition) NormalizeAndValidate() error {
	d.Handle = strings.TrimSpace(d.Handle)
	d.Name = strings.TrimSpace(d.Name)
	d.Instructions = strings.TrimSpace(d.Instructions)

	if d.Name == "" {
		d.Name = d.Handle
	}
	if d.MaxStars == 0 {
		d.MaxStars = DefaultMaxStars
	}

	if err := validator.Validate(d); err != nil {
		return fmt.Errorf("field %q: %w", d.Handle, err)
	}
	return nil
}

func (d Definition) Field() models.Field {
	return models.Field{
		Handle:       d.Handle,
		Name:         d.Name,
		Instructions: d.Instructions,
		MaxStars:     d.MaxStars,
	}
}

func FromField(field models.Field) Definition {
	return Definition{
		Handle:       field.Handle,
		Name:         field.Name,
		Instructions: field.Instructions,
		MaxStars:     field.MaxStars,
	}
}
