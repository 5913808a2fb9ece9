package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/store"
	"github.com/listenupapp/readinglog/internal/store/sqlite"
)

type backendFactory struct {
	name string
	open func(t *testing.T) store.Backend
}

func backends() []backendFactory {
	return []backendFactory{
		{"badger", func(t *testing.T) store.Backend {
			b, err := store.OpenBadger(t.TempDir(), nil)
			require.NoError(t, err)
			return b
		}},
		{"sqlite", func(t *testing.T) store.Backend {
			b, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
			require.NoError(t, err)
			return b
		}},
		{"memory", func(_ *testing.T) store.Backend {
			return store.NewMemoryBackend()
		}},
	}
}

// forEachBackend runs fn against a fresh Store on every backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *store.Store)) {
	t.Helper()
	for _, f := range backends() {
		t.Run(f.name, func(t *testing.T) {
			s := store.New(f.open(t), nil)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func TestBackend_GetSetDeleteKeys(t *testing.T) {
	ctx := context.Background()
	for _, f := range backends() {
		t.Run(f.name, func(t *testing.T) {
			b := f.open(t)
			t.Cleanup(func() { _ = b.Close() })

			_, err := b.Get(ctx, "missing")
			assert.ErrorIs(t, err, store.ErrKeyNotFound)

			require.NoError(t, b.Set(ctx, "reviews_b", []byte(`[2]`)))
			require.NoError(t, b.Set(ctx, "reviews_a", []byte(`[1]`)))
			require.NoError(t, b.Set(ctx, "history_a", []byte(`[]`)))
			require.NoError(t, b.Set(ctx, "reviews_a", []byte(`[1,1]`)))

			v, err := b.Get(ctx, "reviews_a")
			require.NoError(t, err)
			assert.Equal(t, `[1,1]`, string(v))

			keys, err := b.Keys(ctx, "reviews_")
			require.NoError(t, err)
			assert.Equal(t, []string{"reviews_a", "reviews_b"}, keys)

			require.NoError(t, b.Delete(ctx, "reviews_a"))
			require.NoError(t, b.Delete(ctx, "reviews_a"), "deleting an absent key is not an error")

			_, err = b.Get(ctx, "reviews_a")
			assert.ErrorIs(t, err, store.ErrKeyNotFound)
		})
	}
}

func TestStore_EmptyCollections(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		books, err := s.LoadShelf(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)

		reviews, err := s.LoadReviews(ctx, "book-x")
		require.NoError(t, err)
		assert.Empty(t, reviews)

		draft, err := s.LoadDraft(ctx, "book-x")
		require.NoError(t, err)
		assert.Nil(t, draft)

		history, err := s.LoadHistory(ctx, "book-x")
		require.NoError(t, err)
		assert.Empty(t, history)

		require.NoError(t, s.Ping(ctx))
	})
}

func TestStore_ShelfRoundTrip(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		rating := 4.5
		books := []*domain.Book{
			{ID: "book-1", Title: "미드나이트 라이브러리", Author: "매트 헤이그", Status: domain.StatusReading, CurrentPage: 120, TotalPages: 300, ReadCount: 1, AddedAt: now, UpdatedAt: now},
			{ID: "book-2", Title: "보건교사 안은영", Author: "정세랑", Status: domain.StatusCompleted, CurrentPage: 280, TotalPages: 280, Rating: &rating, CompletedDate: &now, ReadCount: 2, AddedAt: now, UpdatedAt: now},
		}
		require.NoError(t, s.SaveShelf(ctx, books))

		got, err := s.LoadShelf(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "book-1", got[0].ID, "stored order is preserved")
		assert.Equal(t, 120, got[0].CurrentPage)
		require.NotNil(t, got[1].Rating)
		assert.InDelta(t, 4.5, *got[1].Rating, 0.001)
		require.NotNil(t, got[1].CompletedDate)
		assert.True(t, got[1].CompletedDate.Equal(now))
	})
}

func TestStore_UpdateBook(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		require.NoError(t, s.SaveShelf(ctx, []*domain.Book{
			{ID: "book-1", Title: "A", Author: "a", Status: domain.StatusWantToRead, TotalPages: 100},
		}))

		updated, found, err := s.UpdateBook(ctx, "book-1", func(b *domain.Book) error {
			b.CurrentPage = 40
			b.Status = domain.StatusReading
			return nil
		})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 40, updated.CurrentPage)

		got, err := s.GetBook(ctx, "book-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReading, got.Status)

		_, found, err = s.UpdateBook(ctx, "nope", func(*domain.Book) error { return nil })
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStore_UpdateBook_ErrorLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		require.NoError(t, s.SaveShelf(ctx, []*domain.Book{
			{ID: "book-1", Title: "A", Author: "a", CurrentPage: 10, TotalPages: 100},
		}))

		_, found, err := s.UpdateBook(ctx, "book-1", func(b *domain.Book) error {
			b.CurrentPage = 999
			return domainerrors.OutOfRange("too far")
		})
		assert.True(t, found)
		assert.ErrorIs(t, err, domainerrors.ErrOutOfRange)

		got, err := s.GetBook(ctx, "book-1")
		require.NoError(t, err)
		assert.Equal(t, 10, got.CurrentPage)
	})
}

func TestStore_ReviewsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		require.NoError(t, s.AppendReview(ctx, domain.Review{ID: "rev-1", BookID: "book-1", Type: domain.ReviewInterim, Content: "first"}))
		require.NoError(t, s.AppendReview(ctx, domain.Review{ID: "rev-2", BookID: "book-1", Type: domain.ReviewComplete, Content: "second"}))
		require.NoError(t, s.AppendReview(ctx, domain.Review{ID: "rev-3", BookID: "book-2", Type: domain.ReviewComplete, Content: "other"}))

		reviews, err := s.LoadReviews(ctx, "book-1")
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, "first", reviews[0].Content)
		assert.Equal(t, "second", reviews[1].Content)

		ids, err := s.ListReviewedBookIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"book-1", "book-2"}, ids)

		all, err := s.LoadAllReviews(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestStore_Drafts(t *testing.T) {
	ctx := context.Background()
	rating := 4.0
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		d := &domain.ReviewDraft{
			Thoughts: "좋았다",
			Emotions: []domain.Emotion{domain.EmotionJoy},
			Rating:   &rating,
		}
		require.NoError(t, s.SaveDraft(ctx, "book-1", d))

		got, err := s.LoadDraft(ctx, "book-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "좋았다", got.Thoughts)
		assert.Equal(t, []domain.Emotion{domain.EmotionJoy}, got.Emotions)

		require.NoError(t, s.DeleteDraft(ctx, "book-1"))
		got, err = s.LoadDraft(ctx, "book-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

// durableBackends open a backend at a fixed location so it can be closed and
// opened again within one test.
func durableBackends() []struct {
	name string
	open func(t *testing.T, dir string) store.Backend
} {
	return []struct {
		name string
		open func(t *testing.T, dir string) store.Backend
	}{
		{"badger", func(t *testing.T, dir string) store.Backend {
			b, err := store.OpenBadger(dir, nil)
			require.NoError(t, err)
			return b
		}},
		{"sqlite", func(t *testing.T, dir string) store.Backend {
			b, err := sqlite.Open(filepath.Join(dir, "readinglog.db"), nil)
			require.NoError(t, err)
			return b
		}},
	}
}

func TestStore_DraftSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	rating := 3.5
	saved := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, f := range durableBackends() {
		t.Run(f.name, func(t *testing.T) {
			dir := t.TempDir()

			s := store.New(f.open(t, dir), nil)
			require.NoError(t, s.SaveDraft(ctx, "7", &domain.ReviewDraft{
				UpdatedAt:      saved,
				Rating:         &rating,
				Thoughts:       "반쯤 읽고 남긴 생각",
				Quote:          "밑줄 친 문장",
				Generated:      "생성된 초안",
				Emotions:       []domain.Emotion{domain.EmotionThoughtful, domain.EmotionMoved},
				IsIntermediate: true,
			}))
			require.NoError(t, s.Close())

			s = store.New(f.open(t, dir), nil)
			got, err := s.LoadDraft(ctx, "7")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "반쯤 읽고 남긴 생각", got.Thoughts)
			assert.Equal(t, "밑줄 친 문장", got.Quote)
			assert.Equal(t, "생성된 초안", got.Generated)
			assert.Equal(t, []domain.Emotion{domain.EmotionThoughtful, domain.EmotionMoved}, got.Emotions)
			require.NotNil(t, got.Rating)
			assert.InDelta(t, 3.5, *got.Rating, 0)
			assert.True(t, got.IsIntermediate)
			assert.True(t, saved.Equal(got.UpdatedAt))

			// Saving the review appends it and clears the draft.
			require.NoError(t, s.AppendReview(ctx, domain.Review{ID: "rev-1", BookID: "7", Content: "x", Emotions: []domain.Emotion{}}))
			require.NoError(t, s.DeleteDraft(ctx, "7"))
			require.NoError(t, s.Close())

			s = store.New(f.open(t, dir), nil)
			t.Cleanup(func() { _ = s.Close() })
			got, err = s.LoadDraft(ctx, "7")
			require.NoError(t, err)
			assert.Nil(t, got)

			reviews, err := s.LoadReviews(ctx, "7")
			require.NoError(t, err)
			assert.Len(t, reviews, 1)
		})
	}
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		require.NoError(t, s.AppendHistory(ctx, "book-1", domain.HistoryEntry{Date: "2024-03-01", Page: 10, Progress: 10}))
		require.NoError(t, s.AppendHistory(ctx, "book-1", domain.HistoryEntry{Date: "2024-03-02", Page: 30, Progress: 30}))

		history, err := s.LoadHistory(ctx, "book-1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, 30, history[1].Page)
	})
}

func TestStore_CorruptValueIsStorageError(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, "bookshelf", []byte("{not json")))

	s := store.New(backend, nil)
	_, err := s.LoadShelf(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrStorage)
}

func TestStore_ClosedBackendIsStorageError(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	s := store.New(backend, nil)
	require.NoError(t, s.Close())

	err := s.SaveShelf(ctx, nil)
	assert.ErrorIs(t, err, domainerrors.ErrStorage)
}

func TestStore_LegacyWishlistStatus(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, "bookshelf",
		[]byte(`[{"id":"book-1","title":"T","author":"A","cover":"","status":"wishlist","currentPage":0,"totalPages":200,"hasReview":false}]`)))

	s := store.New(backend, nil)
	books, err := s.LoadShelf(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, domain.StatusWantToRead, books[0].Status)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := store.New(store.NewMemoryBackend(), nil)
	_, err := s.LoadShelf(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrCanceled)
}

func TestStore_Inventory(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		require.NoError(t, s.SaveShelf(ctx, []*domain.Book{{ID: "book-1", Title: "책", TotalPages: 100}}))
		require.NoError(t, s.AppendReview(ctx, domain.Review{ID: "rev-1", BookID: "book-1", Content: "좋았다"}))
		require.NoError(t, s.AppendHistory(ctx, "book-1", domain.HistoryEntry{Date: "2024-03-01", Page: 10, Progress: 10}))
		require.NoError(t, s.AppendHistory(ctx, "book-2", domain.HistoryEntry{Date: "2024-03-01", Page: 5, Progress: 5}))

		usage, err := s.Inventory(ctx)
		require.NoError(t, err)
		require.Len(t, usage, 5)

		byName := make(map[string]store.CollectionUsage)
		for _, u := range usage {
			byName[u.Name] = u
		}
		assert.Equal(t, store.CollectionBookshelf, usage[0].Name)
		assert.Equal(t, 1, byName[store.CollectionBookshelf].Keys)
		assert.Equal(t, 1, byName[store.CollectionReviews].Keys)
		assert.Equal(t, 0, byName[store.CollectionDrafts].Keys)
		assert.Equal(t, 2, byName[store.CollectionHistory].Keys)
		assert.Positive(t, byName[store.CollectionBookshelf].Bytes)
	})
}
