// Package store persists the reading log as JSON documents in a local
// key-value backend. It is the only place that knows the stored forms.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
)

// Store reads and writes typed collections over a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger

	// mu serializes read-modify-write sequences. Last write wins.
	mu sync.Mutex
}

// New creates a Store over backend. A nil logger discards output.
func New(backend Backend, log *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.OrDiscard(log),
	}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	s.logger.Info("Closing store")
	return s.backend.Close()
}

// Ping verifies the backend answers reads.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.backend.Get(ctx, keyBookshelf)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return storageError(err, "ping", keyBookshelf)
	}
	return nil
}

// Helper methods for JSON documents.

// getJSON decodes the value at key into dest. It reports false when the key is absent.
func (s *Store) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		if cerr := domainerrors.FromContext(err); cerr != nil {
			return false, cerr
		}
		s.logger.Error("storage read failed", "key", key, "error", err)
		return false, storageError(err, "read", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Error("stored value is not decodable", "key", key, "error", err)
		return false, storageError(err, "decode", key)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "encode %q", key)
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		if cerr := domainerrors.FromContext(err); cerr != nil {
			return cerr
		}
		s.logger.Error("storage write failed", "key", key, "error", err)
		return storageError(err, "write", key)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		if cerr := domainerrors.FromContext(err); cerr != nil {
			return cerr
		}
		s.logger.Error("storage delete failed", "key", key, "error", err)
		return storageError(err, "delete", key)
	}
	return nil
}
