package main

import (
	"context"
	"errors"
	"io"

	"github.com/listenupapp/readinglog/internal/catalog"
	"github.com/listenupapp/readinglog/internal/config"
	"github.com/listenupapp/readinglog/internal/di/providers"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/search"
	"github.com/listenupapp/readinglog/internal/service"
	"github.com/listenupapp/readinglog/internal/store"
	"github.com/listenupapp/readinglog/internal/validation"
)

// app is everything a command needs. It owns the store and the index.
type app struct {
	store        *store.Store
	index        *search.Index
	catalog      *catalog.Searcher
	shelf        *service.ShelfService
	review       *service.ReviewService
	stats        *service.StatsService
	registration *service.RegistrationService
	notifier     service.Notifier
	log          *logger.Logger
}

// appParts are the pieces newApp wires together.
type appParts struct {
	backend    store.Backend
	index      *search.Index
	provider   catalog.Provider
	generator  generator.Generator
	notifier   service.Notifier
	log        *logger.Logger
	yearlyGoal int
	collab     service.Collaborators
}

// openApp opens the configured backend and index and wires the services.
// On failure everything opened so far is closed again.
func openApp(cfg *config.Config, notices io.Writer, log *logger.Logger) (_ *app, err error) {
	backend, err := providers.OpenBackend(cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = backend.Close()
		}
	}()

	var index *search.Index
	if cfg.Search.Enabled {
		dataPath := cfg.Storage.DataPath
		if cfg.Storage.Backend == config.BackendMemory {
			dataPath = ""
		}
		index, err = search.New(search.Options{DataPath: dataPath, Logger: log.Logger})
		if err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				_ = index.Close()
			}
		}()
	}

	var provider catalog.Provider
	if cfg.Catalog.Provider == config.ProviderGoogleBooks {
		provider, err = catalog.NewGoogleBooks(catalog.GoogleBooksConfig{
			Logger:    log.Logger,
			BaseURL:   cfg.Catalog.BaseURL,
			APIKey:    cfg.Catalog.APIKey,
			CacheSize: cfg.Catalog.CacheSize,
		})
		if err != nil {
			return nil, err
		}
	} else {
		provider = catalog.NewMemoryCatalog(
			catalog.WithLatency(cfg.Catalog.Latency),
			catalog.WithLogger(log.Logger),
		)
	}

	return newApp(appParts{
		backend:    backend,
		index:      index,
		provider:   provider,
		generator:  generator.NewTemplateGenerator(cfg.Generator.Latency, log.Logger),
		notifier:   newTerminalNotifier(notices),
		log:        log,
		yearlyGoal: cfg.Goals.YearlyGoal,
	}), nil
}

func newApp(p appParts) *app {
	if p.log == nil {
		p.log = logger.Discard()
	}
	if p.notifier == nil {
		p.notifier = service.NoopNotifier{}
	}

	collab := p.collab
	if collab.Validator == nil {
		collab.Validator = validation.New()
	}
	collab.Notifier = p.notifier
	collab.Events = service.NoopEmitter{}
	collab.Logger = p.log.Logger
	collab.Indexer = service.NoopSearchIndexer{}
	if p.index != nil {
		collab.Indexer = p.index
	}

	st := store.New(p.backend, p.log.Logger)
	shelf := service.NewShelfService(st, collab)

	return &app{
		store:        st,
		index:        p.index,
		catalog:      catalog.NewSearcher(p.provider, p.log.Logger, nil),
		shelf:        shelf,
		review:       service.NewReviewService(st, p.generator, collab),
		stats:        service.NewStatsService(st, p.yearlyGoal, collab),
		registration: service.NewRegistrationService(shelf, collab.Validator, collab),
		notifier:     p.notifier,
		log:          p.log,
	}
}

// ensureIndexed rebuilds an empty index from the store so `find` sees books
// added while search was disabled.
func (a *app) ensureIndexed(ctx context.Context) error {
	if a.index == nil {
		return errors.New("library search is disabled (SEARCH_ENABLED=false)")
	}
	if n, _ := a.index.DocumentCount(); n > 0 {
		return nil
	}
	books, err := a.store.LoadShelf(ctx)
	if err != nil || len(books) == 0 {
		return err
	}
	reviews, err := a.store.LoadAllReviews(ctx)
	if err != nil {
		return err
	}
	a.log.Info("Rebuilding search index", "books", len(books), "reviews", len(reviews))
	return a.index.Reindex(ctx, books, reviews)
}

func (a *app) Close() error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
