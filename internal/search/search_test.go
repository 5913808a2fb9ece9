package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglog/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func rating(v float64) *float64 { return &v }

var testBooks = []*domain.Book{
	{
		ID:          "book-1",
		Title:       "미드나이트 라이브러리",
		Author:      "매트 헤이그",
		Publisher:   "인플루엔셜",
		Description: "삶과 죽음 사이의 도서관",
		Category:    "소설",
		Status:      domain.StatusReading,
		CurrentPage: 150,
		TotalPages:  300,
		AddedAt:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	},
	{
		ID:          "book-2",
		Title:       "The Midnight Library",
		Author:      "Matt Haig",
		Category:    "소설",
		Status:      domain.StatusCompleted,
		CurrentPage: 288,
		TotalPages:  288,
		Rating:      rating(4.5),
		AddedAt:     time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	},
	{
		ID:         "book-3",
		Title:      "사피엔스",
		Author:     "유발 하라리",
		Category:   "인문학",
		Status:     domain.StatusWantToRead,
		TotalPages: 636,
		AddedAt:    time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	},
}

var testReview = domain.Review{
	ID:       "review-1",
	BookID:   "book-3",
	Type:     domain.ReviewInterim,
	Date:     "2024-03-05",
	Content:  "인류의 역사를 새로운 시각으로 바라보게 되었다",
	Emotions: []domain.Emotion{domain.EmotionThoughtful},
	Rating:   rating(4),
}

func seed(t *testing.T, idx *Index) {
	t.Helper()
	require.NoError(t, idx.Reindex(context.Background(), testBooks, []domain.Review{testReview}))
}

func TestNew_InMemory(t *testing.T) {
	idx := setupTestIndex(t)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNew_ReopensExistingIndex(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := New(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexBook(ctx, testBooks[0]))
	require.NoError(t, idx.Close())

	idx, err = New(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNew_RebuildsOnVersionMismatch(t *testing.T) {
	dir := t.TempDir()

	idx, err := New(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexBook(context.Background(), testBooks[0]))
	require.NoError(t, idx.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, versionFile), []byte("0"), 0o644))

	idx, err = New(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	version, err := os.ReadFile(filepath.Join(dir, versionFile))
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))
}

func TestIndexBook_Replaces(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	b := testBooks[0].Clone()
	require.NoError(t, idx.IndexBook(ctx, b))
	b.Status = domain.StatusCompleted
	require.NoError(t, idx.IndexBook(ctx, b))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := idx.Search(ctx, Params{Status: string(domain.StatusCompleted), Types: []DocType{DocTypeBook}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "book-1", res.Hits[0].ID)
}

func TestSearch_KoreanTitle(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), Params{Query: "라이브러리", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "book-1", res.Hits[0].ID)
	assert.Equal(t, DocTypeBook, res.Hits[0].Type)
	assert.Equal(t, "미드나이트 라이브러리", res.Hits[0].Title)
	assert.Equal(t, 50, res.Hits[0].Progress)
}

func TestSearch_LatinPrefix(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), Params{Query: "Midn", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "book-2", res.Hits[0].ID)
	require.NotNil(t, res.Hits[0].Rating)
	assert.InDelta(t, 4.5, *res.Hits[0].Rating, 0)
}

func TestSearch_ReviewContent(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), Params{
		Query: "인류의 역사",
		Types: []DocType{DocTypeReview},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	hit := res.Hits[0]
	assert.Equal(t, "review-1", hit.ID)
	assert.Equal(t, DocTypeReview, hit.Type)
	assert.Equal(t, "book-3", hit.BookID)
	assert.Equal(t, "사피엔스", hit.Title, "reviews carry their book's title")
	assert.Equal(t, string(domain.ReviewInterim), hit.ReviewType)
}

func TestSearch_ReviewFoundByBookTitle(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), Params{Query: "사피엔스"})
	require.NoError(t, err)

	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	assert.ElementsMatch(t, []string{"book-3", "review-1"}, ids)
}

func TestSearch_Filters(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)
	ctx := context.Background()

	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{
			name:   "status",
			params: Params{Status: string(domain.StatusWantToRead)},
			want:   []string{"book-3"},
		},
		{
			name:   "category",
			params: Params{Category: "소설"},
			want:   []string{"book-1", "book-2"},
		},
		{
			name:   "emotion",
			params: Params{Emotion: string(domain.EmotionThoughtful)},
			want:   []string{"review-1"},
		},
		{
			name:   "books only",
			params: Params{Types: []DocType{DocTypeBook}},
			want:   []string{"book-1", "book-2", "book-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := idx.Search(ctx, tt.params)
			require.NoError(t, err)
			ids := make([]string, len(res.Hits))
			for i, h := range res.Hits {
				ids[i] = h.ID
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestSearch_Facets(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Total)
	assert.Contains(t, res.Facets.Types, FacetCount{Value: "book", Count: 3})
	assert.Contains(t, res.Facets.Types, FacetCount{Value: "review", Count: 1})
	assert.Contains(t, res.Facets.Categories, FacetCount{Value: "소설", Count: 2})
}

func TestSearch_SortByProgress(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), Params{Types: []DocType{DocTypeBook}, SortBy: "progress"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 3)
	assert.Equal(t, "book-2", res.Hits[0].ID)
	assert.Equal(t, "book-1", res.Hits[1].ID)
	assert.Equal(t, "book-3", res.Hits[2].ID)
}

func TestSearch_NoMatch(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	res, err := idx.Search(context.Background(), Params{Query: "존재하지않는책"})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Hits)
}

func TestDelete(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	require.NoError(t, idx.Delete("review-1"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestRebuild(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestClosed(t *testing.T) {
	idx, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	assert.ErrorIs(t, idx.IndexBook(context.Background(), testBooks[0]), ErrClosed)
	_, err = idx.Search(context.Background(), DefaultParams())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestIndexBook_Canceled(t *testing.T) {
	idx := setupTestIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, idx.IndexBook(ctx, testBooks[0]), context.Canceled)
}
