package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel/starfield/internal/fielddefs"
	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/rating"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gabriel/starfield/internal/validation"
	"github.com/gofiber/fiber/v2"
)

func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	fields, settings, err := h.fieldsAndSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load fields")
	}

	handles := make(map[string]bool, len(fields))
	for _, field := range fields {
		handles[field.Handle] = true
	}
	query := readEntryQuery(c, "updated_at")
	query.Query = strings.TrimSpace(query.Query)
	options, err := query.options(handles)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	entries, err := h.entries.List(options)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load entries")
	}

	rows := make([]entryRowView, 0, len(entries))
	for _, entry := range entries {
		cells := make([]string, 0, len(fields))
		for _, field := range fields {
			cells = append(cells, rating.Render(entry.Rating(field.Handle), field.RatingConfig(settings)))
		}
		rows = append(rows, entryRowView{ID: entry.ID, Title: entry.Title, Cells: cells})
	}

	c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	return h.render(c, "dashboard_page.html", dashboardPageData{
		Query:       query.Query,
		Filter:      query,
		Operators:   repository.ConditionOperators(),
		Fields:      fields,
		Columns:     sortColumns(fields, query),
		Rows:        rows,
		ColumnCount: len(fields) + 2,
	})
}

// sortColumns builds the rating column headers. Clicking the active column
// flips the order; any other column starts descending.
func sortColumns(fields []models.Field, query entryQuery) []columnView {
	columns := make([]columnView, 0, len(fields))
	for _, field := range fields {
		active := query.SortRating == field.Handle
		order := "desc"
		if active && strings.EqualFold(query.Order, "desc") {
			order = "asc"
		}

		params := url.Values{}
		if query.Query != "" {
			params.Set("q", query.Query)
		}
		if query.RatingField != "" {
			params.Set("ratingField", query.RatingField)
			params.Set("ratingOp", query.RatingOp)
			if query.RatingValue != "" {
				params.Set("ratingValue", query.RatingValue)
			}
		}
		params.Set("sortRating", field.Handle)
		params.Set("order", order)

		column := columnView{Handle: field.Handle, Name: field.Name, Instructions: field.Instructions, SortURL: "/dashboard?" + params.Encode()}
		if active {
			column.Arrow = "▼"
			if strings.EqualFold(query.Order, "asc") {
				column.Arrow = "▲"
			}
		}
		columns = append(columns, column)
	}
	return columns
}

func (h *DashboardHandler) CreateEntryFromForm(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Title is required")
	}

	created, err := h.entries.Create(title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create entry")
	}
	h.writer.Reindex(*created)

	return c.Redirect(fmt.Sprintf("/dashboard/entries/%d/edit", created.ID), fiber.StatusSeeOther)
}

// EntryView is the read-only view; it uses the same rendering as the listing.
func (h *DashboardHandler) EntryView(c *fiber.Ctx) error {
	entry, status, message := h.loadEntry(c)
	if entry == nil {
		return c.Status(status).SendString(message)
	}

	fields, settings, err := h.fieldsAndSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load fields")
	}

	ratings := make([]ratingDisplayView, 0, len(fields))
	for _, field := range fields {
		ratings = append(ratings, ratingDisplayView{
			Name:    field.Name,
			Display: rating.Render(entry.Rating(field.Handle), field.RatingConfig(settings)),
		})
	}

	return h.render(c, "entry_static.html", entryStaticData{
		ID:      entry.ID,
		Title:   entry.Title,
		Ratings: ratings,
	})
}

func (h *DashboardHandler) EditEntry(c *fiber.Ctx) error {
	entry, status, message := h.loadEntry(c)
	if entry == nil {
		return c.Status(status).SendString(message)
	}

	fields, settings, err := h.fieldsAndSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load fields")
	}

	return h.render(c, "entry_edit.html", buildEntryEditData(*entry, fields, settings, nil, nil))
}

// UpdateEntryFromForm saves the submitted star pickers. Every submitted value
// is checked against its field's bounds first; if any fails, nothing is
// stored and the form is shown again with the messages. The values that pass
// are written in one transaction.
func (h *DashboardHandler) UpdateEntryFromForm(c *fiber.Ctx) error {
	entry, status, message := h.loadEntry(c)
	if entry == nil {
		return c.Status(status).SendString(message)
	}

	fields, settings, err := h.fieldsAndSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load fields")
	}

	args := c.Request().PostArgs()
	submitted := make(map[string]string, len(fields))
	fieldErrors := make(map[string]string)
	for _, field := range fields {
		key := formFieldPrefix + field.Handle
		if !args.Has(key) {
			continue
		}
		raw := string(args.Peek(key))
		submitted[field.Handle] = raw

		if err := rating.ValidationBounds(field.MaxStars).Check(raw); err != nil {
			fieldErrors[field.Handle] = err.Error()
		}
	}

	if len(fieldErrors) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "entry_edit.html", buildEntryEditData(*entry, fields, settings, submitted, fieldErrors))
	}

	inputs := make([]repository.RatingInput, 0, len(submitted))
	for _, field := range fields {
		if raw, ok := submitted[field.Handle]; ok {
			inputs = append(inputs, repository.RatingInput{Field: field, Raw: raw})
		}
	}

	_, err = h.writer.WriteAll(*entry, inputs)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("Entry not found")
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save ratings")
	}

	return c.Redirect(fmt.Sprintf("/dashboard/entries/%d", entry.ID), fiber.StatusSeeOther)
}

func (h *DashboardHandler) DeleteEntryFromForm(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid entry id")
	}

	deleted, err := h.entries.Delete(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete entry")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).SendString("Entry not found")
	}
	h.writer.Unindex(id)

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (h *DashboardHandler) SettingsPage(c *fiber.Ctx) error {
	return h.renderSettings(c, fielddefs.Definition{MaxStars: fielddefs.DefaultMaxStars}, nil)
}

// SettingsFromForm treats unchecked boxes as false, as browsers omit them.
func (h *DashboardHandler) SettingsFromForm(c *fiber.Ctx) error {
	settings := models.Settings{
		AllowZeroStars: c.FormValue("allowZeroStars") == "true",
		ShowEmptyStars: c.FormValue("showEmptyStars") == "true",
	}
	if _, err := h.settings.Update(settings); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save settings")
	}
	return c.Redirect("/dashboard/settings", fiber.StatusSeeOther)
}

func (h *DashboardHandler) CreateFieldFromForm(c *fiber.Ctx) error {
	definition := fielddefs.Definition{
		Handle:       c.FormValue("handle"),
		Name:         c.FormValue("name"),
		Instructions: c.FormValue("instructions"),
	}
	maxStars, err := parseMaxStars(c.FormValue("maxStars"))
	if err != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderSettings(c, definition, map[string]string{"maxStars": err.Error()})
	}
	definition.MaxStars = maxStars

	if err := definition.NormalizeAndValidate(); err != nil {
		var validationErr *validation.Error
		if !errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderSettings(c, definition, validationErr.Fields)
	}

	_, err = h.fields.Create(definition.Field())
	if errors.Is(err, repository.ErrDuplicateHandle) {
		c.Status(fiber.StatusConflict)
		return h.renderSettings(c, definition, map[string]string{"handle": "is already taken"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create field")
	}

	return c.Redirect("/dashboard/settings", fiber.StatusSeeOther)
}

func (h *DashboardHandler) renderSettings(c *fiber.Ctx, newField fielddefs.Definition, fieldErrors map[string]string) error {
	fields, settings, err := h.fieldsAndSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	return h.render(c, "settings_page.html", settingsPageData{
		Settings:        settings,
		Fields:          fields,
		MaxStarsOptions: fielddefs.MaxStarsOptions(),
		NewField:        newField,
		FieldErrors:     fieldErrors,
	})
}

func (h *DashboardHandler) loadEntry(c *fiber.Ctx) (*models.Entry, int, string) {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return nil, fiber.StatusBadRequest, "Invalid entry id"
	}

	entry, err := h.entries.GetByID(id)
	if err != nil {
		return nil, fiber.StatusInternalServerError, "Failed to load entry"
	}
	if entry == nil {
		return nil, fiber.StatusNotFound, "Entry not found"
	}
	return entry, fiber.StatusOK, ""
}

func (h *DashboardHandler) fieldsAndSettings() ([]models.Field, models.Settings, error) {
	fields, err := h.fields.List()
	if err != nil {
		return nil, models.Settings{}, err
	}
	settings, err := h.settings.Get()
	if err != nil {
		return nil, models.Settings{}, err
	}
	return fields, settings, nil
}

// buildEntryEditData draws each picker from the submitted value when there is
// one, so a rejected form keeps what the user chose.
func buildEntryEditData(entry models.Entry, fields []models.Field, settings models.Settings, submitted map[string]string, fieldErrors map[string]string) entryEditData {
	views := make([]ratingFieldView, 0, len(fields))
	for _, field := range fields {
		cfg := field.RatingConfig(settings)

		value := entry.Rating(field.Handle)
		if raw, ok := submitted[field.Handle]; ok {
			value = rating.Normalize(raw, field.MaxStars)
		}

		views = append(views, ratingFieldView{
			Handle:       field.Handle,
			Name:         field.Name,
			Instructions: field.Instructions,
			MaxStars:     field.MaxStars,
			Picker:       rating.NewPicker(value, cfg),
			Display:      rating.Render(value, cfg),
			Error:        fieldErrors[field.Handle],
		})
	}

	return entryEditData{ID: entry.ID, Title: entry.Title, Fields: views}
}

func parseMaxStars(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	maxStars, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return maxStars, nil
}
