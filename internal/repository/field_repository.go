package repository

import (
	"database/sql"
	"fmt"

	"github.com/gabriel/starfield/internal/models"
)

type FieldRepository struct {
	db *sql.DB
}

func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

const fieldColumns = `id, handle, name, instructions, max_stars, created_at, updated_at`

func scanField(scanner rowScanner) (*models.Field, error) {
	var item models.Field
	err := scanner.Scan(
		&item.ID,
		&item.Handle,
		&item.Name,
		&item.Instructions,
		&item.MaxStars,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *FieldRepository) List() ([]models.Field, error) {
	rows, err := r.db.Query(`SELECT ` + fieldColumns + ` FROM fields ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	items := make([]models.Field, 0)
	for rows.Next() {
		item, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}

	return items, nil
}

func (r *FieldRepository) GetByHandle(handle string) (*models.Field, error) {
	row := r.db.QueryRow(`SELECT `+fieldColumns+` FROM fields WHERE handle = ?`, handle)

	item, err := scanField(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get field by handle: %w", err)
	}

	return item, nil
}

func (r *FieldRepository) Create(field models.Field) (*models.Field, error) {
	_, err := r.db.Exec(`
		INSERT INTO fields (handle, name, instructions, max_stars)
		VALUES (?, ?, ?, ?)
	`, field.Handle, field.Name, field.Instructions, field.MaxStars)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("insert field: %w", err)
	}

	return r.GetByHandle(field.Handle)
}

// Update changes a field's settings. Stored ratings are left untouched; they
// are clamped against the new maximum whenever they are read.
func (r *FieldRepository) Update(handle string, field models.Field) (*models.Field, error) {
	result, err := r.db.Exec(`
		UPDATE fields
		SET name = ?, instructions = ?, max_stars = ?, updated_at = CURRENT_TIMESTAMP
		WHERE handle = ?
	`, field.Name, field.Instructions, field.MaxStars, handle)
	if err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("field update rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByHandle(handle)
}

// Upsert creates the field or replaces the settings of the field with the
// same handle.
func (r *FieldRepository) Upsert(field models.Field) (*models.Field, error) {
	_, err := r.db.Exec(`
		INSERT INTO fields (handle, name, instructions, max_stars)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			name = excluded.name,
			instructions = excluded.instructions,
			max_stars = excluded.max_stars,
			updated_at = CURRENT_TIMESTAMP
	`, field.Handle, field.Name, field.Instructions, field.MaxStars)
	if err != nil {
		return nil, fmt.Errorf("upsert field %s: %w", field.Handle, err)
	}

	return r.GetByHandle(field.Handle)
}

func (r *FieldRepository) Delete(handle string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM fields WHERE handle = ?`, handle)
	if err != nil {
		return false, fmt.Errorf("delete field: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("field delete rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
