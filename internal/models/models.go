package models

import (
	"time"

	"github.com/gabriel/starfield/internal/rating"
)

type Field struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	MaxStars     int       `json:"maxStars"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Entry struct {
	ID        int64                   `json:"id"`
	Title     string                  `json:"title"`
	Ratings   map[string]rating.Value `json:"ratings"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// Rating returns the stored value for a field handle; unknown handles are absent.
func (e *Entry) Rating(handle string) rating.Value {
	if e == nil || e.Ratings == nil {
		return rating.Absent()
	}
	return e.Ratings[handle]
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Settings is the plugin-wide configuration shared by every star field.
type Settings struct {
	AllowZeroStars bool `json:"allowZeroStars"`
	ShowEmptyStars bool `json:"showEmptyStars"`
}

func DefaultSettings() Settings {
	return Settings{AllowZeroStars: false, ShowEmptyStars: true}
}

// RatingConfig combines a field's star count with the shared settings.
func (f Field) RatingConfig(settings Settings) rating.Config {
	return rating.Config{
		MaxStars:       f.MaxStars,
		AllowZeroStars: settings.AllowZeroStars,
		ShowEmptyStars: settings.ShowEmptyStars,
	}
}
