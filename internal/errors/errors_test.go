package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/readinglog/internal/errors"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := domainerrors.OutOfRangef("page %d is outside 0..%d", 301, 300)

	assert.True(t, domainerrors.Is(err, domainerrors.ErrOutOfRange))
	assert.False(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "page 301 is outside 0..300", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("update progress: %w", domainerrors.NotFound("book not found"))

	assert.True(t, domainerrors.Is(wrapped, domainerrors.ErrNotFound))
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code domainerrors.Code
		want int
	}{
		{domainerrors.CodeNotFound, http.StatusNotFound},
		{domainerrors.CodeValidation, http.StatusBadRequest},
		{domainerrors.CodeOutOfRange, http.StatusUnprocessableEntity},
		{domainerrors.CodeStorage, http.StatusServiceUnavailable},
		{domainerrors.CodeCanceled, domainerrors.StatusClientClosedRequest},
		{domainerrors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestStorage_KeepsCause(t *testing.T) {
	cause := domainerrors.New("disk full")
	err := domainerrors.Storage(cause, "save shelf")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save shelf: disk full", err.Error())
}

func TestWithDetails(t *testing.T) {
	err := domainerrors.ErrValidation.WithDetails(map[string]string{"title": "is required"})

	require.NotNil(t, err.Details)
	assert.Equal(t, domainerrors.CodeValidation, err.Code)
	assert.Nil(t, domainerrors.ErrValidation.Details, "sentinel must not be mutated")
}

func TestFromContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := domainerrors.FromContext(ctx.Err())
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrCanceled))
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, domainerrors.FromContext(nil))
	assert.NoError(t, domainerrors.FromContext(domainerrors.New("other")))
}
