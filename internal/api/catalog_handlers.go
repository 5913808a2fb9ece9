package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search the book catalog",
		Description: "Searches the catalog by title. A new search cancels the one in flight.",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleSearchCatalog)
}

// === DTOs ===

// SearchCatalogInput contains parameters for a catalog search.
type SearchCatalogInput struct {
	Query string `query:"q" maxLength:"200" doc:"Title substring (case-sensitive for the built-in catalog)"`
}

// CatalogResponse contains catalog search results.
type CatalogResponse struct {
	Query string        `json:"query" doc:"The query as received"`
	Books []domain.Book `json:"books" doc:"Matching catalog books; empty when nothing matched"`
}

// CatalogOutput wraps the catalog response for Huma.
type CatalogOutput struct {
	Body CatalogResponse
}

// === Handlers ===

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*CatalogOutput, error) {
	books, err := s.services.Catalog.Search(ctx, input.Query)
	if err != nil {
		return nil, toAPIError(err)
	}

	if len(books) == 0 && strings.TrimSpace(input.Query) != "" && s.services.Notifier != nil {
		s.services.Notifier.Notify(service.NoResultsNotification())
	}
	if books == nil {
		books = []domain.Book{}
	}

	return &CatalogOutput{
		Body: CatalogResponse{Query: input.Query, Books: books},
	}, nil
}
