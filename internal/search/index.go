// Package search keeps an in-memory full-text index of entries so they can be
// found by title or by the ratings they carry.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/gabriel/starfield/internal/models"
	"github.com/gabriel/starfield/internal/rating"
	"github.com/gabriel/starfield/internal/searchutil"
)

// Index is safe for concurrent use. A rebuild loads and indexes its snapshot
// off the lock; single-entry writes that land meanwhile are recorded in
// pending and replayed onto the fresh index before it is swapped in.
type Index struct {
	mu        sync.RWMutex
	index     bleve.Index
	logger    *slog.Logger
	rebuildMu sync.Mutex

	pendingMu  sync.Mutex
	rebuilding bool
	// pending holds the latest write per entry id; nil means removed.
	pending map[int64]*models.Entry
}

type Result struct {
	EntryIDs []int64 `json:"entryIds"`
	Total    uint64  `json:"total"`
}

func NewIndex(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}

	return &Index{index: index, logger: logger}, nil
}

func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Keywords builds the indexable rating text of an entry: for every present
// rating the field handle, a handle_number token and the plain number.
func Keywords(entry models.Entry) string {
	handles := make([]string, 0, len(entry.Ratings))
	for handle := range entry.Ratings {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	parts := make([]string, 0, len(handles)*3)
	for _, handle := range handles {
		number := rating.SearchKeywords(entry.Ratings[handle])
		if number == "" {
			continue
		}
		lowered := strings.ToLower(handle)
		parts = append(parts, lowered, lowered+"_"+number, number)
	}
	return strings.Join(parts, " ")
}

func document(entry models.Entry) map[string]any {
	return map[string]any{
		fieldTitle:    entry.Title,
		fieldKeywords: Keywords(entry),
	}
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *Index) IndexEntry(entry models.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.record(entry.ID, &entry)
	if err := s.index.Index(docID(entry.ID), document(entry)); err != nil {
		return fmt.Errorf("index entry %d: %w", entry.ID, err)
	}
	return nil
}

func (s *Index) RemoveEntry(id int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.record(id, nil)
	if err := s.index.Delete(docID(id)); err != nil {
		return fmt.Errorf("remove entry %d: %w", id, err)
	}
	return nil
}

func (s *Index) record(id int64, entry *models.Entry) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.rebuilding {
		s.pending[id] = entry
	}
}

// Rebuild replaces the whole index with the given entries.
func (s *Index) Rebuild(entries []models.Entry) error {
	return s.RebuildFrom(func() ([]models.Entry, error) {
		return entries, nil
	})
}

// RebuildFrom replaces the whole index with what load returns. Writes made
// through IndexEntry or RemoveEntry after load starts win over the snapshot.
func (s *Index) RebuildFrom(load func() ([]models.Entry, error)) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	s.pendingMu.Lock()
	s.rebuilding = true
	s.pending = make(map[int64]*models.Entry)
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		s.rebuilding = false
		s.pending = nil
		s.pendingMu.Unlock()
	}()

	entries, err := load()
	if err != nil {
		return err
	}

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create search index: %w", err)
	}

	batch := fresh.NewBatch()
	for _, entry := range entries {
		if err := batch.Index(docID(entry.ID), document(entry)); err != nil {
			_ = fresh.Close()
			return fmt.Errorf("batch entry %d: %w", entry.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("apply search batch: %w", err)
	}

	s.mu.Lock()
	if err := s.replayPending(fresh); err != nil {
		s.mu.Unlock()
		_ = fresh.Close()
		return err
	}
	previous := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := previous.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("search index rebuilt", "entries", len(entries))
	return nil
}

// replayPending runs under the write lock, so no write can slip in between
// the replay and the swap.
func (s *Index) replayPending(fresh bleve.Index) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	for id, entry := range s.pending {
		if entry == nil {
			if err := fresh.Delete(docID(id)); err != nil {
				return fmt.Errorf("replay removal of entry %d: %w", id, err)
			}
			continue
		}
		if err := fresh.Index(docID(id), document(*entry)); err != nil {
			return fmt.Errorf("replay entry %d: %w", id, err)
		}
	}
	if len(s.pending) > 0 {
		s.logger.Debug("replayed writes made during rebuild", "entries", len(s.pending))
	}
	return nil
}

func (s *Index) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Search matches every query token against the title or the rating keywords.
// "rating:4" and "rating 4" both find entries whose rating field holds 4.
func (s *Index) Search(ctx context.Context, rawQuery string, limit int) (*Result, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	request := bleve.NewSearchRequestOptions(buildQuery(rawQuery), limit, 0, false)

	s.mu.RLock()
	response, err := s.index.SearchInContext(ctx, request)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	result := &Result{EntryIDs: make([]int64, 0, len(response.Hits)), Total: response.Total}
	for _, hit := range response.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		result.EntryIDs = append(result.EntryIDs, id)
	}
	return result, nil
}

func buildQuery(rawQuery string) query.Query {
	tokens := searchutil.TokenizeNormalized(searchutil.Normalize(rawQuery))
	if len(tokens) == 0 {
		return bleve.NewMatchAllQuery()
	}

	perToken := make([]query.Query, 0, len(tokens))
	for _, token := range tokens {
		titleMatch := bleve.NewMatchQuery(token)
		titleMatch.SetField(fieldTitle)

		keywordMatch := bleve.NewMatchQuery(token)
		keywordMatch.SetField(fieldKeywords)

		perToken = append(perToken, bleve.NewDisjunctionQuery(titleMatch, keywordMatch))
	}
	return bleve.NewConjunctionQuery(perToken...)
}
