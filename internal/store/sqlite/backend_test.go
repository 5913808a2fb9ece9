package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/store"
)

func openTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readinglog.db")
	b, err := Open(path, nil)
	require.NoError(t, err)
	return b, path
}

func TestBackend_GetSetDelete(t *testing.T) {
	b, _ := openTestBackend(t)
	defer b.Close()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	require.NoError(t, b.Set(ctx, "k", []byte("v1")))
	require.NoError(t, b.Set(ctx, "k", []byte("v2")))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"), "deleting an absent key is not an error")

	_, err = b.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestBackend_KeysWithUnderscorePrefix(t *testing.T) {
	b, _ := openTestBackend(t)
	defer b.Close()
	ctx := context.Background()

	for _, k := range []string{"reviews_b", "reviews_a", "reviewsXa", "draft_a"} {
		require.NoError(t, b.Set(ctx, k, []byte("{}")))
	}

	keys, err := b.Keys(ctx, "reviews_")
	require.NoError(t, err)
	assert.Equal(t, []string{"reviews_a", "reviews_b"}, keys)
}

func TestBackend_SurvivesReopen(t *testing.T) {
	b, path := openTestBackend(t)
	ctx := context.Background()

	st := store.New(b, nil)
	require.NoError(t, st.SaveShelf(ctx, []*domain.Book{{ID: "book-1", Title: "책", TotalPages: 100}}))
	require.NoError(t, st.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	st = store.New(reopened, nil)
	defer st.Close()

	books, err := st.LoadShelf(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "책", books[0].Title)
}
