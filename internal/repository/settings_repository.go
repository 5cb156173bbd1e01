package repository

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/gabriel/starfield/internal/database"
	"github.com/gabriel/starfield/internal/models"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) List() ([]models.Setting, error) {
	rows, err := r.db.Query(`
		SELECT key, value, updated_at
		FROM settings
		ORDER BY key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	items := make([]models.Setting, 0)
	for rows.Next() {
		var item models.Setting
		if err := rows.Scan(&item.Key, &item.Value, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return items, nil
}

// Get reads the plugin-wide star settings. Missing or unreadable rows keep
// their defaults.
func (r *SettingsRepository) Get() (models.Settings, error) {
	settings := models.DefaultSettings()

	items, err := r.List()
	if err != nil {
		return settings, err
	}

	for _, item := range items {
		parsed, err := strconv.ParseBool(item.Value)
		if err != nil {
			continue
		}
		switch item.Key {
		case database.SettingAllowZeroStars:
			settings.AllowZeroStars = parsed
		case database.SettingShowEmptyStars:
			settings.ShowEmptyStars = parsed
		}
	}

	return settings, nil
}

func (r *SettingsRepository) Update(settings models.Settings) (models.Settings, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return models.Settings{}, fmt.Errorf("begin settings tx: %w", err)
	}

	values := map[string]bool{
		database.SettingAllowZeroStars: settings.AllowZeroStars,
		database.SettingShowEmptyStars: settings.ShowEmptyStars,
	}
	for key, value := range values {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value)
			VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`, key, strconv.FormatBool(value))
		if err != nil {
			_ = tx.Rollback()
			return models.Settings{}, fmt.Errorf("save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Settings{}, fmt.Errorf("commit settings tx: %w", err)
	}

	return r.Get()
}
