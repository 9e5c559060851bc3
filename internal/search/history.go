package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stuverflow/stuverflow-go/internal/storage"
)

// historyLimit caps the recent-searches list; the oldest entry is evicted on
// overflow.
const historyLimit = 10

// History returns the recent query strings, most recent first. A missing or
// unreadable history record yields an empty list.
func (s *Service) History(ctx context.Context) ([]string, error) {
	raw, err := s.store.Get(ctx, storage.KeySearchHistory)
	if err != nil {
		return nil, fmt.Errorf("read search history: %w", err)
	}
	if raw == nil {
		return []string{}, nil
	}

	var history []string
	if err := json.Unmarshal(raw, &history); err != nil {
		s.log.Warn(ctx, "search history corrupt, resetting", "error", err)
		return []string{}, nil
	}
	return history, nil
}

// recordSearch puts query at the front of the history, de-duplicated: re-
// searching an existing term moves it to the front instead of adding a
// duplicate. Concurrent searches serialize here so no entry is lost to a
// racing rewrite.
func (s *Service) recordSearch(ctx context.Context, query string) error {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	history, err := s.History(ctx)
	if err != nil {
		return err
	}

	next := make([]string, 0, historyLimit)
	next = append(next, query)
	for _, q := range history {
		if q == query {
			continue
		}
		next = append(next, q)
		if len(next) == historyLimit {
			break
		}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode search history: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeySearchHistory, raw); err != nil {
		return fmt.Errorf("write search history: %w", err)
	}
	return nil
}

// ClearHistory removes the recent-searches record.
func (s *Service) ClearHistory(ctx context.Context) error {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	if err := s.store.Delete(ctx, storage.KeySearchHistory); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}
