package store

import (
	"errors"
	"fmt"

	domainerrors "github.com/listenupapp/readinglog/internal/errors"
)

// ErrKeyNotFound is returned by a Backend when a key is absent.
// Store methods translate it into an empty collection or a nil draft.
var ErrKeyNotFound = errors.New("key not found")

// ErrClosed is returned by a Backend after Close.
var ErrClosed = errors.New("store closed")

// storageError wraps a backend or codec failure as a non-fatal STORAGE error.
func storageError(err error, op, key string) error {
	return domainerrors.Storage(err, fmt.Sprintf("%s %q", op, key))
}

// errBookAbsent short-circuits UpdateShelf inside UpdateBook.
var errBookAbsent = errors.New("book absent")
