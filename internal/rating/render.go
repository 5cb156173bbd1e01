package rating

import (
	"fmt"
	"strings"
)

const (
	FilledStar  = "⭐"
	EmptyStar   = "☆"
	Placeholder = "-"
)

// Config is the display and edit configuration of one field instance.
// MaxStars is usually one of the canonical options but any positive count works.
type Config struct {
	MaxStars       int  `json:"maxStars"`
	AllowZeroStars bool `json:"allowZeroStars"`
	ShowEmptyStars bool `json:"showEmptyStars"`
}

// Render produces the compact display form used by listings, read-only views
// and summaries. All of them must go through here.
func Render(value Value, cfg Config) string {
	stars, present := value.Int()

	if cfg.MaxStars == 1 {
		if present && stars == 1 {
			return FilledStar
		}
		if cfg.ShowEmptyStars {
			return EmptyStar
		}
		return Placeholder
	}

	if !present || stars <= 0 {
		return Placeholder
	}

	if cfg.MaxStars <= 5 {
		filled := strings.Repeat(FilledStar, stars)
		if !cfg.ShowEmptyStars || stars >= cfg.MaxStars {
			return filled
		}
		return filled + strings.Repeat(EmptyStar, cfg.MaxStars-stars)
	}

	return fmt.Sprintf("%s (%d/%d)", FilledStar, stars, cfg.MaxStars)
}
