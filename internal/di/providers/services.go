package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglog/internal/config"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
	"github.com/listenupapp/readinglog/internal/service"
	"github.com/listenupapp/readinglog/internal/validation"
)

// ProvideCollaborators bundles the side-channel dependencies every service shares.
func ProvideCollaborators(i do.Injector) (service.Collaborators, error) {
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	var indexer service.SearchIndexer = service.NoopSearchIndexer{}
	if indexHandle.Index != nil {
		indexer = indexHandle.Index
	}

	return service.Collaborators{
		Notifier:  sseHandle.Manager,
		Events:    sseHandle.Manager,
		Indexer:   indexer,
		Metrics:   m,
		Logger:    log.Logger,
		Validator: validation.New(),
	}, nil
}

// ProvideShelfService provides the shelf service.
func ProvideShelfService(i do.Injector) (*service.ShelfService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	collab := do.MustInvoke[service.Collaborators](i)

	return service.NewShelfService(storeHandle.Store, collab), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gen := do.MustInvoke[generator.Generator](i)
	collab := do.MustInvoke[service.Collaborators](i)

	return service.NewReviewService(storeHandle.Store, gen, collab), nil
}

// ProvideStatsService provides the statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	collab := do.MustInvoke[service.Collaborators](i)

	return service.NewStatsService(storeHandle.Store, cfg.Goals.YearlyGoal, collab), nil
}

// ProvideRegistrationService provides manual book registration.
func ProvideRegistrationService(i do.Injector) (*service.RegistrationService, error) {
	shelf := do.MustInvoke[*service.ShelfService](i)
	collab := do.MustInvoke[service.Collaborators](i)

	return service.NewRegistrationService(shelf, collab.Validator, collab), nil
}
