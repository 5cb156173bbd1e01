package handlers

import (
	"database/sql"
	"html/template"
	"strconv"
	"sync"

	"github.com/gabriel/starfield/internal/fielddefs"
	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/rating"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gabriel/starfield/web"
	"github.com/gofiber/fiber/v2"
)

const formFieldPrefix = "field_"

type DashboardHandler struct {
	entries      *repository.EntryRepository
	fields       *repository.FieldRepository
	settings     *repository.SettingsRepository
	writer       *RatingWriter
	templates    *template.Template
	templateOnce sync.Once
	templateErr  error
}

type dashboardPageData struct {
	Query       string
	Filter      entryQuery
	Operators   []string
	Fields      []models.Field
	Columns     []columnView
	Rows        []entryRowView
	ColumnCount int
}

type columnView struct {
	Handle       string
	Name         string
	Instructions string
	SortURL      string
	Arrow        string
}

type entryRowView struct {
	ID    int64
	Title string
	Cells []string
}

type entryStaticData struct {
	ID      int64
	Title   string
	Ratings []ratingDisplayView
}

type ratingDisplayView struct {
	Name    string
	Display string
}

type entryEditData struct {
	ID     int64
	Title  string
	Fields []ratingFieldView
}

type ratingFieldView struct {
	Handle       string
	Name         string
	Instructions string
	MaxStars     int
	Picker       rating.Picker
	Display      string
	Error        string
}

type settingsPageData struct {
	Settings        models.Settings
	Fields          []models.Field
	MaxStarsOptions []fielddefs.Option
	NewField        fielddefs.Definition
	FieldErrors     map[string]string
}

func NewDashboardHandler(db *sql.DB, writer *RatingWriter) *DashboardHandler {
	return &DashboardHandler{
		entries:  repository.NewEntryRepository(db),
		fields:   repository.NewFieldRepository(db),
		settings: repository.NewSettingsRepository(db),
		writer:   writer,
	}
}

func (h *DashboardHandler) loadTemplates() (*template.Template, error) {
	h.templateOnce.Do(func() {
		h.templates, h.templateErr = template.New("").Funcs(template.FuncMap{
			"filledStar":    func() string { return rating.FilledStar },
			"emptyStar":     func() string { return rating.EmptyStar },
			"maxStarsLabel": maxStarsLabel,
		}).ParseFS(web.Templates, "templates/*.html")
	})
	return h.templates, h.templateErr
}

func (h *DashboardHandler) render(c *fiber.Ctx, templateName string, data any) error {
	tmpl, err := h.loadTemplates()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Template load error")
	}
	c.Type("html", "utf-8")
	return tmpl.ExecuteTemplate(c.Response().BodyWriter(), templateName, data)
}

func maxStarsLabel(maxStars int) string {
	for _, option := range fielddefs.MaxStarsOptions() {
		if option.Value == maxStars {
			return option.Label
		}
	}
	if maxStars == 1 {
		return "1 star"
	}
	return strconv.Itoa(maxStars) + " stars"
}
