package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/rating"
)

type EntryListOptions struct {
	Query  string
	SortBy string
	Order  string
	Limit  int
	Offset int
	// RatingSort orders by the named field's rating instead of SortBy.
	// Unrated entries come last in either direction.
	RatingSort string
	Condition  *RatingCondition
}

// RatingCondition keeps entries whose rating for Handle matches. Value is
// ignored by the empty and notEmpty operators. Comparisons use the rating as
// it reads, clamped to the field's current maximum, and never match unrated
// entries.
type RatingCondition struct {
	Handle   string
	Operator string
	Value    int
}

const (
	OpEqual        = "eq"
	OpNotEqual     = "ne"
	OpLess         = "lt"
	OpLessEqual    = "lte"
	OpGreater      = "gt"
	OpGreaterEqual = "gte"
	OpEmpty        = "empty"
	OpNotEmpty     = "notEmpty"
)

var comparisonOperators = map[string]string{
	OpEqual:        "=",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
}

// ConditionOperators lists the operators in display order.
func ConditionOperators() []string {
	return []string{OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEmpty, OpNotEmpty}
}

// NeedsValue reports whether the operator compares against Value.
func (c RatingCondition) NeedsValue() bool {
	_, ok := comparisonOperators[c.Operator]
	return ok
}

func (c RatingCondition) validate() error {
	if strings.TrimSpace(c.Handle) == "" {
		return fmt.Errorf("%w: field handle is required", ErrInvalidCondition)
	}
	if c.NeedsValue() || c.Operator == OpEmpty || c.Operator == OpNotEmpty {
		return nil
	}
	return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Operator)
}

// RatingInput is one field's raw value for SetRatings.
type RatingInput struct {
	Field models.Field
	Raw   any
}

type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(scanner rowScanner) (*models.Entry, error) {
	var entry models.Entry
	if err := scanner.Scan(&entry.ID, &entry.Title, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	entry.Ratings = map[string]rating.Value{}
	return &entry, nil
}

func (r *EntryRepository) Create(title string) (*models.Entry, error) {
	result, err := r.db.Exec(`INSERT INTO entries (title) VALUES (?)`, title)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get entry last insert id: %w", err)
	}

	return r.GetByID(id)
}

func (r *EntryRepository) GetByID(id int64) (*models.Entry, error) {
	row := r.db.QueryRow(`
		SELECT id, title, created_at, updated_at
		FROM entries
		WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry by id: %w", err)
	}

	ratingsByEntry, err := r.listRatingsByEntryIDs([]int64{entry.ID})
	if err != nil {
		return nil, err
	}
	if ratings, ok := ratingsByEntry[entry.ID]; ok {
		entry.Ratings = ratings
	}

	return entry, nil
}

func (r *EntryRepository) List(options EntryListOptions) ([]models.Entry, error) {
	validSortFields := map[string]string{
		"title":      "e.title",
		"created_at": "e.created_at",
		"updated_at": "e.updated_at",
	}
	sortField, ok := validSortFields[options.SortBy]
	if !ok {
		sortField = validSortFields["created_at"]
	}

	order := strings.ToUpper(options.Order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := `SELECT e.id, e.title, e.created_at, e.updated_at FROM entries e`
	joinArgs := make([]any, 0, 2)
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if condition := options.Condition; condition != nil {
		if err := condition.validate(); err != nil {
			return nil, err
		}
		query += `
			JOIN fields cf ON cf.handle = ?
			LEFT JOIN entry_ratings cr ON cr.entry_id = e.id AND cr.field_id = cf.id`
		joinArgs = append(joinArgs, condition.Handle)

		switch condition.Operator {
		case OpEmpty:
			where = append(where, `cr.rating IS NULL`)
		case OpNotEmpty:
			where = append(where, `cr.rating IS NOT NULL`)
		default:
			where = append(where, clampedRating("cr", "cf")+` `+comparisonOperators[condition.Operator]+` ?`)
			args = append(args, condition.Value)
		}
	}

	orderBy := sortField + ` ` + order
	if handle := strings.TrimSpace(options.RatingSort); handle != "" {
		query += `
			LEFT JOIN fields sf ON sf.handle = ?
			LEFT JOIN entry_ratings sr ON sr.entry_id = e.id AND sr.field_id = sf.id`
		joinArgs = append(joinArgs, handle)
		expr := clampedRating("sr", "sf")
		orderBy = expr + ` IS NULL, ` + expr + ` ` + order
	}

	if trimmed := strings.TrimSpace(options.Query); trimmed != "" {
		where = append(where, `LOWER(e.title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(trimmed)+"%")
	}

	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ` + orderBy + `, e.id DESC`
	args = append(joinArgs, args...)

	if options.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, options.Limit)
		if options.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, options.Offset)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}

	if len(entries) == 0 {
		return entries, nil
	}

	ratingsByEntry, err := r.listRatingsByEntryIDs(entryIDs(entries))
	if err != nil {
		return nil, err
	}
	for index := range entries {
		if ratings, ok := ratingsByEntry[entries[index].ID]; ok {
			entries[index].Ratings = ratings
		}
	}

	return entries, nil
}

// listRatingsByEntryIDs returns one value per (entry, field) pair, absent when
// nothing is stored. Stored numbers are normalized against the field's current
// maximum so a field shrunk from 10 to 5 stars never reports 7.
func (r *EntryRepository) listRatingsByEntryIDs(ids []int64) (map[int64]map[string]rating.Value, error) {
	result := make(map[int64]map[string]rating.Value, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`
		SELECT e.id, f.handle, f.max_stars, er.rating
		FROM entries e
		CROSS JOIN fields f
		LEFT JOIN entry_ratings er ON er.entry_id = e.id AND er.field_id = f.id
		WHERE e.id IN (`+sqlPlaceholders(len(ids))+`)
		ORDER BY e.id, f.id
	`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("list entry ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID int64
		var handle string
		var maxStars int
		var stored sql.NullInt64
		if err := rows.Scan(&entryID, &handle, &maxStars, &stored); err != nil {
			return nil, fmt.Errorf("scan entry rating: %w", err)
		}
		if result[entryID] == nil {
			result[entryID] = map[string]rating.Value{}
		}
		result[entryID][handle] = rating.Normalize(stored, maxStars)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry ratings: %w", err)
	}

	return result, nil
}

// SetRating normalizes raw against the field and stores it. Absent is stored
// as NULL. It returns ErrNotFound when the entry does not exist.
func (r *EntryRepository) SetRating(entryID int64, field models.Field, raw any) (rating.Value, error) {
	values, err := r.SetRatings(entryID, []RatingInput{{Field: field, Raw: raw}})
	if err != nil {
		return rating.Absent(), err
	}
	return values[field.Handle], nil
}

// SetRatings stores every input in one transaction: either all values are
// written or none are. The returned map holds the normalized value per field
// handle.
func (r *EntryRepository) SetRatings(entryID int64, inputs []RatingInput) (map[string]rating.Value, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin rating tx: %w", err)
	}

	result, err := tx.Exec(`UPDATE entries SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, entryID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("touch entry: %w", err)
	}
	touched, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("entry touch rows affected: %w", err)
	}
	if touched == 0 {
		_ = tx.Rollback()
		return nil, ErrNotFound
	}

	values := make(map[string]rating.Value, len(inputs))
	for _, input := range inputs {
		value := rating.Normalize(input.Raw, input.Field.MaxStars)
		_, err = tx.Exec(`
			INSERT INTO entry_ratings (entry_id, field_id, rating)
			VALUES (?, ?, ?)
			ON CONFLICT(entry_id, field_id) DO UPDATE SET rating = excluded.rating, updated_at = CURRENT_TIMESTAMP
		`, entryID, input.Field.ID, value)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("save rating %q: %w", input.Field.Handle, err)
		}
		values[input.Field.Handle] = value
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rating tx: %w", err)
	}

	return values, nil
}

func (r *EntryRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("entry delete rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListAll is used by the search reindexer.
func (r *EntryRepository) ListAll() ([]models.Entry, error) {
	return r.List(EntryListOptions{SortBy: "created_at", Order: "asc"})
}

// clampedRating is the SQL form of reading a stored rating against the
// field's current maximum. NULL stays NULL.
func clampedRating(ratings, fields string) string {
	return `MIN(MAX(` + ratings + `.rating, 0), ` + fields + `.max_stars)`
}

func entryIDs(entries []models.Entry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids
}
