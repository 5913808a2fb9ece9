// Package di provides dependency injection configuration for the reading log server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglog/internal/catalog"
	"github.com/listenupapp/readinglog/internal/config"
	"github.com/listenupapp/readinglog/internal/di/providers"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
	"github.com/listenupapp/readinglog/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Catalog and generator
	do.Provide(injector, providers.ProvideCatalogProvider)
	do.Provide(injector, providers.ProvideCatalogSearcher)
	do.Provide(injector, providers.ProvideGenerator)

	// Business services
	do.Provide(injector, providers.ProvideCollaborators)
	do.Provide(injector, providers.ProvideShelfService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideRegistrationService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[catalog.Provider](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*catalog.Searcher](injector)
	_ = do.MustInvoke[generator.Generator](injector)

	// Business services
	_ = do.MustInvoke[service.Collaborators](injector)
	_ = do.MustInvoke[*service.ShelfService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.RegistrationService](injector)

	// Server
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
