package store

import (
	"context"

	"github.com/listenupapp/readinglog/internal/domain"
)

// SaveDraft stores the composer form for a book, replacing any earlier draft.
func (s *Store) SaveDraft(ctx context.Context, bookID string, d *domain.ReviewDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setJSON(ctx, draftKey(bookID), d)
}

// LoadDraft returns the stored draft, or nil when there is none.
func (s *Store) LoadDraft(ctx context.Context, bookID string) (*domain.ReviewDraft, error) {
	var d domain.ReviewDraft
	found, err := s.getJSON(ctx, draftKey(bookID), &d)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

// DeleteDraft removes a book's draft. Missing drafts are ignored.
func (s *Store) DeleteDraft(ctx context.Context, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, draftKey(bookID))
}
