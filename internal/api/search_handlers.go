package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/search",
		Summary:     "Search shelf and reviews",
		Description: "Full-text search over shelf books and saved reviews with facets",
		Tags:        []string{"Search"},
	}, s.handleSearchLibrary)
}

// SearchLibraryInput contains parameters for a library search.
type SearchLibraryInput struct {
	Query    string `query:"q" doc:"Search text; empty matches everything"`
	Type     string `query:"type" enum:"book,review" doc:"Restrict to books or reviews"`
	Status   string `query:"status" doc:"Filter books by status"`
	Category string `query:"category" doc:"Filter by category"`
	Emotion  string `query:"emotion" doc:"Filter reviews by emotion tag"`
	Sort     string `query:"sort" enum:"relevance,recent,rating,progress" doc:"Sort order"`
	Limit    int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Page size"`
	Offset   int    `query:"offset" minimum:"0" default:"0" doc:"Results to skip"`
}

// SearchLibraryOutput wraps the search result for Huma.
type SearchLibraryOutput struct {
	Body search.Result
}

func (s *Server) handleSearchLibrary(ctx context.Context, input *SearchLibraryInput) (*SearchLibraryOutput, error) {
	if s.services.Search == nil {
		return nil, huma.NewError(http.StatusServiceUnavailable, "library search is disabled")
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.Status = input.Status
	params.Category = input.Category
	params.Emotion = input.Emotion
	params.Limit = input.Limit
	params.Offset = input.Offset
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Type != "" {
		params.Types = []search.DocType{search.DocType(input.Type)}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, toAPIError(domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed"))
	}
	return &SearchLibraryOutput{Body: *result}, nil
}
