package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/notifications"
	"github.com/gabriel/starfield/internal/rating"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/gabriel/starfield/internal/search"
)

const notifyTimeout = 10 * time.Second

// RatingWriter is the single write path for ratings shared by the JSON API and
// the dashboard forms. Storing a value reindexes the entry and, when the
// value changed, sends a notification in the background.
type RatingWriter struct {
	entries  *repository.EntryRepository
	settings *repository.SettingsRepository
	index    *search.Index
	notifier notifications.Notifier
	logger   *slog.Logger
}

func NewRatingWriter(db *sql.DB, index *search.Index, notifier notifications.Notifier, logger *slog.Logger) *RatingWriter {
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingWriter{
		entries:  repository.NewEntryRepository(db),
		settings: repository.NewSettingsRepository(db),
		index:    index,
		notifier: notifier,
		logger:   logger,
	}
}

// Write stores raw for the field and returns the reloaded entry.
func (w *RatingWriter) Write(entry models.Entry, field models.Field, raw any) (*models.Entry, error) {
	return w.WriteAll(entry, []repository.RatingInput{{Field: field, Raw: raw}})
}

// WriteAll stores every input in one transaction, reindexes the entry once
// and notifies for each field whose value changed.
func (w *RatingWriter) WriteAll(entry models.Entry, inputs []repository.RatingInput) (*models.Entry, error) {
	current, err := w.entries.SetRatings(entry.ID, inputs)
	if err != nil {
		return nil, err
	}

	updated, err := w.entries.GetByID(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("reload entry: %w", err)
	}
	if updated == nil {
		return nil, repository.ErrNotFound
	}

	w.Reindex(*updated)

	for _, input := range inputs {
		previous := entry.Rating(input.Field.Handle)
		if value := current[input.Field.Handle]; value != previous {
			w.notify(*updated, input.Field, previous, value)
		}
	}

	return updated, nil
}

func (w *RatingWriter) Reindex(entry models.Entry) {
	if w.index == nil {
		return
	}
	if err := w.index.IndexEntry(entry); err != nil {
		w.logger.Warn("failed to index entry", "entryId", entry.ID, "error", err)
	}
}

// ReindexAll rebuilds the search index from the database.
func (w *RatingWriter) ReindexAll() error {
	if w.index == nil {
		return nil
	}
	return w.index.RebuildFrom(w.entries.ListAll)
}

func (w *RatingWriter) Unindex(id int64) {
	if w.index == nil {
		return
	}
	if err := w.index.RemoveEntry(id); err != nil {
		w.logger.Warn("failed to remove entry from index", "entryId", id, "error", err)
	}
}

func (w *RatingWriter) notify(entry models.Entry, field models.Field, previous, current rating.Value) {
	settings, err := w.settings.Get()
	if err != nil {
		w.logger.Warn("failed to load settings for notification", "entryId", entry.ID, "error", err)
		settings = models.DefaultSettings()
	}
	message := notifications.RatingChanged(entry, field, previous, current, settings)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := w.notifier.Notify(ctx, message); err != nil {
			w.logger.Warn("rating notification failed",
				"entryId", entry.ID,
				"field", field.Handle,
				"error", err,
			)
		}
	}()
}
