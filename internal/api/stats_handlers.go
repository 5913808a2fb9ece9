package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/service"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Reading statistics",
		Description: "Aggregates the whole shelf: counts, pages, ratings, goal progress, streaks",
		Tags:        []string{"Stats"},
	}, s.handleGetDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/stats",
		Summary:     "Book progress statistics",
		Description: "Returns a book's progress figures and chart series",
		Tags:        []string{"Stats"},
	}, s.handleGetBookStats)
}

// DashboardOutput wraps the dashboard for Huma.
type DashboardOutput struct {
	Body domain.Dashboard
}

// BookStatsOutput wraps a book's progress for Huma.
type BookStatsOutput struct {
	Body service.BookProgress
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	d, err := s.services.Stats.Dashboard(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &DashboardOutput{Body: *d}, nil
}

func (s *Server) handleGetBookStats(ctx context.Context, input *BookIDInput) (*BookStatsOutput, error) {
	p, err := s.services.Stats.BookStats(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	if p.Series == nil {
		p.Series = []domain.ChartPoint{}
	}
	return &BookStatsOutput{Body: *p}, nil
}
