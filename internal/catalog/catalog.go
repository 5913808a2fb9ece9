// Package catalog looks up books that are not yet on the shelf.
package catalog

import (
	"context"

	"github.com/listenupapp/readinglog/internal/domain"
)

// Provider searches a book catalog.
//
// Search returns the matching books in catalog order. A blank query returns
// no results and no error. Zero matches is not an error. A search abandoned
// through ctx returns an error matching errors.ErrCanceled.
type Provider interface {
	Search(ctx context.Context, query string) ([]domain.Book, error)
}
