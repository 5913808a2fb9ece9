package store

import (
	"context"

	"github.com/listenupapp/readinglog/internal/domain"
)

// LoadHistory returns a book's progress snapshots in the order they were recorded.
func (s *Store) LoadHistory(ctx context.Context, bookID string) ([]domain.HistoryEntry, error) {
	var history []domain.HistoryEntry
	if _, err := s.getJSON(ctx, historyKey(bookID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// AppendHistory records a progress snapshot.
func (s *Store) AppendHistory(ctx context.Context, bookID string, e domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := historyKey(bookID)
	var history []domain.HistoryEntry
	if _, err := s.getJSON(ctx, key, &history); err != nil {
		return err
	}
	return s.setJSON(ctx, key, append(history, e))
}
