package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
)

func TestRegister_Defaults(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRegistrationService(env.shelf, nil, env.collab)

	b, err := svc.Register(context.Background(), RegistrationForm{
		Title:  "직접 쓴 책",
		Author: "홍길동",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusWantToRead, b.Status)
	assert.Equal(t, domain.DefaultTotalPages, b.TotalPages)
	assert.Equal(t, domain.DefaultPublisher, b.Publisher)
	assert.Equal(t, domain.DefaultCategory, b.Category)
	assert.Equal(t, domain.PlaceholderCover, b.Cover)
	assert.Zero(t, b.CurrentPage)
	assert.Equal(t, TitleBookAdded, env.notifier.last().Title)
}

func TestRegister_KeepsFields(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRegistrationService(env.shelf, nil, env.collab)

	b, err := svc.Register(context.Background(), RegistrationForm{
		Title:      "책",
		Author:     "저자",
		Publisher:  "민음사",
		Category:   "없는 분류",
		TotalPages: " 412 ",
	})
	require.NoError(t, err)
	assert.Equal(t, 412, b.TotalPages)
	assert.Equal(t, "민음사", b.Publisher)
	assert.Equal(t, "없는 분류", b.Category, "unknown categories are kept")
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		form RegistrationForm
	}{
		{name: "no title", form: RegistrationForm{Author: "저자"}},
		{name: "blank author", form: RegistrationForm{Title: "책", Author: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := NewRegistrationService(env.shelf, nil, env.collab)

			_, err := svc.Register(context.Background(), tt.form)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
			assert.Equal(t, []string{TitleMissingFields}, env.notifier.titles())

			books, err := env.shelf.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, books)
		})
	}
}

func TestParsePageCount(t *testing.T) {
	tests := map[string]int{
		"250":  250,
		" 12 ": 12,
		"":     300,
		"0":    300,
		"-5":   300,
		"abc":  300,
		"12.5": 300,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParsePageCount(in), "input %q", in)
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRegistrationService(env.shelf, nil, env.collab)
	cats := svc.Categories()
	assert.Contains(t, cats, "소설")
	assert.Contains(t, cats, "기타")
}
