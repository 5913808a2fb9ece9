package api

import (
	"github.com/listenupapp/readinglog/internal/catalog"
	"github.com/listenupapp/readinglog/internal/search"
	"github.com/listenupapp/readinglog/internal/service"
)

// Services groups the business logic used by the API server.
type Services struct {
	Shelf        *service.ShelfService
	Review       *service.ReviewService
	Stats        *service.StatsService
	Registration *service.RegistrationService
	Catalog      *catalog.Searcher
	Search       *search.Index    // nil when the library index is disabled
	Notifier     service.Notifier // receives the no-results toast
}
