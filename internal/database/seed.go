package database

import (
	"database/sql"
	"fmt"
)

const (
	SettingAllowZeroStars = "allow_zero_stars"
	SettingShowEmptyStars = "show_empty_stars"
)

func SeedDefaults(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}

	defaultSettings := []struct {
		key   string
		value string
	}{
		{key: SettingAllowZeroStars, value: "false"},
		{key: SettingShowEmptyStars, value: "true"},
	}

	for _, setting := range defaultSettings {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO settings (key, value)
			VALUES (?, ?)
		`, setting.key, setting.value)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed setting %s: %w", setting.key, err)
		}
	}

	_, err = tx.Exec(`
		INSERT OR IGNORE INTO fields (handle, name, instructions, max_stars)
		VALUES ('rating', 'Rating', 'Choose the number of stars.', 5);
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("seed default field: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
