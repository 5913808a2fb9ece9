// Package service implements the reading-log operations on top of the store:
// shelf state, review composition, statistics, and manual registration.
package service

import (
	"log/slog"
	"time"

	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
	"github.com/listenupapp/readinglog/internal/validation"
)

// Collaborators are the outward-facing dependencies shared by all services.
// Zero values are replaced with no-op implementations.
type Collaborators struct {
	Notifier  Notifier
	Events    EventEmitter
	Indexer   SearchIndexer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Validator *validation.Validator
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Notifier == nil {
		c.Notifier = NoopNotifier{}
	}
	if c.Events == nil {
		c.Events = NoopEmitter{}
	}
	if c.Indexer == nil {
		c.Indexer = NoopSearchIndexer{}
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Validator == nil {
		c.Validator = validation.New()
	}
	c.Logger = logger.OrDiscard(c.Logger)
	return c
}

// storageFailed reports a persistence failure to the user. Other errors are ignored.
func (c *Collaborators) storageFailed(op string, err error) {
	if !domainerrors.Is(err, domainerrors.ErrStorage) {
		return
	}
	c.Metrics.IncStorageError(op)
	c.Logger.Error("persistence failed", "operation", op, "error", err)
	c.Notifier.Notify(storageFailedNotification())
}

func (c *Collaborators) today() string {
	return c.Clock().Format(dateLayout)
}

const dateLayout = "2006-01-02"

func notFound(bookID string) error {
	return domainerrors.NotFoundf("book %s not found", bookID)
}
