package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel/starfield/internal/models"
)

type entrySource interface {
	ListAll() ([]models.Entry, error)
}

type rebuilder interface {
	RebuildFrom(load func() ([]models.Entry, error)) error
}

// Reindexer periodically rebuilds the search index from storage so edits made
// outside the API (CLI imports, field changes) become searchable.
type Reindexer struct {
	repo     entrySource
	index    rebuilder
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
}

type ReindexerConfig struct {
	Interval time.Duration
}

func NewReindexer(repo entrySource, index rebuilder, cfg ReindexerConfig, logger *slog.Logger) *Reindexer {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reindexer{
		repo:     repo,
		index:    index,
		interval: cfg.Interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (r *Reindexer) Start(ctx context.Context) {
	r.logger.Info("reindexer started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		if err := r.RunOnce(ctx); err != nil {
			r.logger.Warn("reindexer initial run failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				r.logger.Info("reindexer stopped")
				close(r.stopCh)
				return
			case <-ticker.C:
				if err := r.RunOnce(ctx); err != nil {
					r.logger.Warn("reindex cycle failed", "error", err)
				}
			}
		}
	}()
}

func (r *Reindexer) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-r.stopCh:
	case <-time.After(timeout):
	}
}

func (r *Reindexer) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	started := time.Now()
	var count int
	err := r.index.RebuildFrom(func() ([]models.Entry, error) {
		entries, err := r.repo.ListAll()
		if err != nil {
			return nil, fmt.Errorf("load entries for reindex: %w", err)
		}
		count = len(entries)
		return entries, nil
	})
	if err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}

	r.logger.Debug("reindex finished", "entries", count, "took", time.Since(started).String())
	return nil
}
