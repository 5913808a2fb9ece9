package store

import (
	"context"
	"errors"
	"slices"

	"github.com/listenupapp/readinglog/internal/domain"
)

// LoadShelf returns every shelf book in stored order. An absent shelf is empty.
func (s *Store) LoadShelf(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	if _, err := s.getJSON(ctx, keyBookshelf, &books); err != nil {
		return nil, err
	}
	s.logger.Debug("shelf loaded", "count", len(books))
	return books, nil
}

// SaveShelf replaces the stored shelf.
func (s *Store) SaveShelf(ctx context.Context, books []*domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveShelf(ctx, books)
}

func (s *Store) saveShelf(ctx context.Context, books []*domain.Book) error {
	if books == nil {
		books = []*domain.Book{}
	}
	return s.setJSON(ctx, keyBookshelf, books)
}

// UpdateShelf loads the shelf, applies fn, and saves the result, all under
// the store lock. When fn returns an error nothing is written.
func (s *Store) UpdateShelf(ctx context.Context, fn func(books []*domain.Book) ([]*domain.Book, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var books []*domain.Book
	if _, err := s.getJSON(ctx, keyBookshelf, &books); err != nil {
		return err
	}
	updated, err := fn(books)
	if err != nil {
		return err
	}
	return s.saveShelf(ctx, updated)
}

// UpdateBook applies fn to the book with id under the store lock.
// It reports false when no such book exists; nothing is written then.
func (s *Store) UpdateBook(ctx context.Context, id string, fn func(b *domain.Book) error) (*domain.Book, bool, error) {
	var result *domain.Book
	err := s.UpdateShelf(ctx, func(books []*domain.Book) ([]*domain.Book, error) {
		i := slices.IndexFunc(books, func(b *domain.Book) bool { return b.ID == id })
		if i < 0 {
			return nil, errBookAbsent
		}
		next := books[i].Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		books[i] = next
		result = next.Clone()
		return books, nil
	})
	if errors.Is(err, errBookAbsent) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return result, true, nil
}

// GetBook returns the shelf book with id, or nil when absent.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	books, err := s.LoadShelf(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}
