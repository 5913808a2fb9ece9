package store

import (
	"context"
	"strings"

	"github.com/listenupapp/readinglog/internal/domain"
)

// LoadReviews returns the reviews saved for a book, oldest first.
func (s *Store) LoadReviews(ctx context.Context, bookID string) ([]domain.Review, error) {
	var reviews []domain.Review
	if _, err := s.getJSON(ctx, reviewsKey(bookID), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AppendReview appends r to its book's review list. Reviews are never rewritten.
func (s *Store) AppendReview(ctx context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reviewsKey(r.BookID)
	var reviews []domain.Review
	if _, err := s.getJSON(ctx, key, &reviews); err != nil {
		return err
	}
	reviews = append(reviews, r)
	if err := s.setJSON(ctx, key, reviews); err != nil {
		return err
	}
	s.logger.Info("review appended", "book_id", r.BookID, "review_id", r.ID, "count", len(reviews))
	return nil
}

// ListReviewedBookIDs returns the ids of books that have a review list, in key order.
func (s *Store) ListReviewedBookIDs(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefixReviews)
	if err != nil {
		return nil, storageError(err, "list", prefixReviews)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefixReviews))
	}
	return ids, nil
}

// LoadAllReviews returns every saved review across books.
func (s *Store) LoadAllReviews(ctx context.Context) ([]domain.Review, error) {
	ids, err := s.ListReviewedBookIDs(ctx)
	if err != nil {
		return nil, err
	}
	var all []domain.Review
	for _, id := range ids {
		reviews, err := s.LoadReviews(ctx, id)
		if err != nil {
			return nil, err
		}
		all = append(all, reviews...)
	}
	return all, nil
}
