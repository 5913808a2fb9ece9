package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglog/internal/service"
)

func (s *Server) registerRegistrationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/register",
		Summary:       "Register book manually",
		Description:   "Adds a hand-entered book. Title and author are required; everything else has defaults.",
		Tags:          []string{"Registration"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the categories offered on the registration form",
		Tags:        []string{"Registration"},
	}, s.handleListCategories)
}

// RegisterRequest is a hand-entered book. Every field is optional here so
// missing ones reach the service, which reports them to the user.
type RegisterRequest struct {
	Title       string `json:"title,omitempty" doc:"Title (required)"`
	Author      string `json:"author,omitempty" doc:"Author (required)"`
	Publisher   string `json:"publisher,omitempty" doc:"Publisher"`
	Pubdate     string `json:"pubdate,omitempty" doc:"Publication date"`
	Description string `json:"description,omitempty" doc:"Description"`
	Cover       string `json:"cover,omitempty" doc:"Cover image URL"`
	Category    string `json:"category,omitempty" doc:"Category"`
	TotalPages  string `json:"totalPages,omitempty" doc:"Page count as typed; 300 unless a positive integer"`
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// CategoriesResponse lists the offered categories.
type CategoriesResponse struct {
	Categories []string `json:"categories" doc:"Category names"`
}

// CategoriesOutput wraps the categories for Huma.
type CategoriesOutput struct {
	Body CategoriesResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*BookOutput, error) {
	req := input.Body
	book, err := s.services.Registration.Register(ctx, service.RegistrationForm{
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Pubdate:     req.Pubdate,
		Description: req.Description,
		Cover:       req.Cover,
		Category:    req.Category,
		TotalPages:  req.TotalPages,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleListCategories(_ context.Context, _ *struct{}) (*CategoriesOutput, error) {
	return &CategoriesOutput{Body: CategoriesResponse{Categories: s.services.Registration.Categories()}}, nil
}
