package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/logger"
)

// Index is a full-text index over shelf books and saved reviews.
//
// All public methods are safe for concurrent use. Rebuild takes the write
// lock; everything else shares the read lock.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	// DataPath is the directory holding the index. Empty means in-memory.
	DataPath string
	Logger   *slog.Logger
}

// mappingVersion is bumped whenever the mapping changes. A mismatch on
// startup drops the on-disk index and recreates it.
const mappingVersion = "1"

const (
	indexDir    = "search.bleve"
	versionFile = "search.version"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("search index closed")

// New creates or opens a search index. An existing index with a missing or
// outdated version file, or one that fails to open, is removed and recreated.
func New(opts Options) (*Index, error) {
	log := logger.OrDiscard(opts.Logger)

	if opts.DataPath == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		log.Debug("created in-memory search index")
		return &Index{index: idx, logger: log}, nil
	}

	indexPath := filepath.Join(opts.DataPath, indexDir)
	versionPath := filepath.Join(opts.DataPath, versionFile)

	var idx bleve.Index
	needsRebuild := false

	_, statErr := os.Stat(indexPath)
	indexExists := statErr == nil

	if indexExists {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			log.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existing) != mappingVersion:
			log.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if indexExists && !needsRebuild {
		var err error
		idx, err = bleve.Open(indexPath)
		if err != nil {
			log.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		idx = nil
	}

	if idx == nil {
		if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		var err error
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			log.Warn("failed to write search version file", "error", err)
		}
		log.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		log.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  idx,
		path:   indexPath,
		logger: log,
	}, nil
}

// Close closes the index. Closing twice is a no-op.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}

// IndexBook adds or replaces a shelf book.
func (s *Index) IndexBook(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return nil
	}
	return s.indexDocument(ctx, BookDocument(book))
}

// IndexReview adds a saved review. book, when known, supplies the title and
// author so reviews are found by the book they belong to.
func (s *Index) IndexReview(ctx context.Context, review *domain.Review, book *domain.Book) error {
	if review == nil {
		return nil
	}
	return s.indexDocument(ctx, ReviewDocument(review, book))
}

func (s *Index) indexDocument(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return ErrClosed
	}
	return s.index.Index(doc.ID, doc.ToMap())
}

// Reindex indexes every book and review in batches.
func (s *Index) Reindex(ctx context.Context, books []*domain.Book, reviews []domain.Review) error {
	byID := make(map[string]*domain.Book, len(books))
	docs := make([]*Document, 0, len(books)+len(reviews))
	for _, b := range books {
		byID[b.ID] = b
		docs = append(docs, BookDocument(b))
	}
	for i := range reviews {
		docs = append(docs, ReviewDocument(&reviews[i], byID[reviews[i].BookID]))
	}

	if err := s.indexDocuments(ctx, docs); err != nil {
		return err
	}
	s.logger.Info("search index rebuilt from store", "books", len(books), "reviews", len(reviews))
	return nil
}

func (s *Index) indexDocuments(ctx context.Context, docs []*Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return ErrClosed
	}

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// Delete removes a document.
func (s *Index) Delete(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return ErrClosed
	}
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0, ErrClosed
	}
	return s.index.DocCount()
}

// Rebuild drops every document and starts from an empty index with the
// current mapping. It blocks all other operations while it runs.
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrClosed
	}

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		idx bleve.Index
		err error
	)
	if s.path == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		idx, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		s.index = nil
		return fmt.Errorf("create index: %w", err)
	}

	s.index = idx
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
