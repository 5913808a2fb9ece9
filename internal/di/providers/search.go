package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglog/internal/config"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when library search is disabled.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Library search disabled")
		return &SearchIndexHandle{}, nil
	}

	// The memory backend gets a memory index so both start empty together.
	dataPath := cfg.Storage.DataPath
	if cfg.Storage.Backend == config.BackendMemory {
		dataPath = ""
	}

	index, err := search.New(search.Options{
		DataPath: dataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index from the store.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if indexHandle.Index == nil {
		return
	}
	if docCount, _ := indexHandle.DocumentCount(); docCount > 0 {
		return
	}

	ctx := context.Background()
	books, err := storeHandle.LoadShelf(ctx)
	if err != nil || len(books) == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering initial reindex",
		"book_count", len(books),
	)

	go func() {
		reindexCtx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
		defer cancel()

		reviews, err := storeHandle.LoadAllReviews(reindexCtx)
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		if err := indexHandle.Reindex(reindexCtx, books, reviews); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
