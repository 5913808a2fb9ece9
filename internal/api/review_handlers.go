package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List reviews",
		Description: "Returns a book's saved reviews, oldest first",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "saveReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/reviews",
		Summary:       "Save review",
		Description:   "Appends a review, marks the book reviewed, and clears the draft",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSaveReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "generateReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/reviews/generate",
		Summary:     "Generate review",
		Description: "Generates review text from thoughts and emotions and stores it in the draft",
		Tags:        []string{"Reviews"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleGenerateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDraft",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/draft",
		Summary:     "Get review draft",
		Description: "Returns the saved composer state for a book",
		Tags:        []string{"Reviews"},
	}, s.handleGetDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveDraft",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/draft",
		Summary:     "Save review draft",
		Description: "Stores the composer state for a book",
		Tags:        []string{"Reviews"},
	}, s.handleSaveDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "reviewSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/summary",
		Summary:     "Review summary",
		Description: "Aggregates every saved review: emotion counts, average rating, reader label",
		Tags:        []string{"Reviews"},
	}, s.handleReviewSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "listEmotions",
		Method:      http.MethodGet,
		Path:        "/api/v1/emotions",
		Summary:     "List emotions",
		Description: "Returns the emotion vocabulary in display order",
		Tags:        []string{"Reviews"},
	}, s.handleListEmotions)
}

// === DTOs ===

// ReviewRequest is the composer state.
type ReviewRequest struct {
	Thoughts       string           `json:"thoughts,omitempty" maxLength:"10000" doc:"Free-form thoughts"`
	Quote          string           `json:"quote,omitempty" maxLength:"2000" doc:"Memorable quote"`
	Emotions       []domain.Emotion `json:"emotions,omitempty" doc:"Emotion tags from the vocabulary"`
	Rating         *float64         `json:"rating,omitempty" doc:"Rating 0-5 in steps of 0.5; omit to leave the book unrated"`
	IsIntermediate bool             `json:"isIntermediate,omitempty" doc:"Written before finishing the book"`
}

func (r ReviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{
		Thoughts:       r.Thoughts,
		Quote:          r.Quote,
		Emotions:       r.Emotions,
		Rating:         r.Rating,
		IsIntermediate: r.IsIntermediate,
	}
}

// SaveReviewRequest is the final composer state.
type SaveReviewRequest struct {
	ReviewRequest
	Generated string `json:"generated,omitempty" doc:"Generated text; saved instead of thoughts when present"`
}

// SaveReviewInput wraps the save request for Huma.
type SaveReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body SaveReviewRequest
}

// ReviewOutput wraps a saved review for Huma.
type ReviewOutput struct {
	Body domain.Review
}

// ListReviewsResponse lists a book's reviews.
type ListReviewsResponse struct {
	Reviews []domain.Review `json:"reviews" doc:"Reviews, oldest first"`
}

// ListReviewsOutput wraps the list response for Huma.
type ListReviewsOutput struct {
	Body ListReviewsResponse
}

// GenerateReviewInput wraps the generate request for Huma.
type GenerateReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body ReviewRequest
}

// GeneratedResponse carries generated review text.
type GeneratedResponse struct {
	Text string `json:"text" doc:"Generated review text"`
}

// GeneratedOutput wraps the generated text for Huma.
type GeneratedOutput struct {
	Body GeneratedResponse
}

// DraftResponse is a book's draft, or null when none was saved.
type DraftResponse struct {
	Draft *domain.ReviewDraft `json:"draft" doc:"Saved composer state, null when absent"`
}

// DraftOutput wraps the draft for Huma.
type DraftOutput struct {
	Body DraftResponse
}

// SaveDraftInput wraps the draft request for Huma.
type SaveDraftInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body SaveReviewRequest
}

// SummaryOutput wraps the review summary for Huma.
type SummaryOutput struct {
	Body domain.ReviewSummary
}

// EmotionsResponse lists the emotion vocabulary.
type EmotionsResponse struct {
	Emotions []domain.Emotion `json:"emotions" doc:"Emotion tags in display order"`
}

// EmotionsOutput wraps the vocabulary for Huma.
type EmotionsOutput struct {
	Body EmotionsResponse
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *BookIDInput) (*ListReviewsOutput, error) {
	reviews, err := s.services.Review.ListReviews(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &ListReviewsOutput{Body: ListReviewsResponse{Reviews: reviews}}, nil
}

func (s *Server) handleSaveReview(ctx context.Context, input *SaveReviewInput) (*ReviewOutput, error) {
	review, err := s.services.Review.SaveReview(ctx, input.ID, service.ReviewSubmission{
		ReviewInput: input.Body.input(),
		Generated:   input.Body.Generated,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &ReviewOutput{Body: *review}, nil
}

func (s *Server) handleGenerateReview(ctx context.Context, input *GenerateReviewInput) (*GeneratedOutput, error) {
	text, err := s.services.Review.GenerateReview(ctx, input.ID, input.Body.input())
	if err != nil {
		return nil, toAPIError(err)
	}
	return &GeneratedOutput{Body: GeneratedResponse{Text: text}}, nil
}

func (s *Server) handleGetDraft(ctx context.Context, input *BookIDInput) (*DraftOutput, error) {
	draft, err := s.services.Review.LoadDraft(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &DraftOutput{Body: DraftResponse{Draft: draft}}, nil
}

func (s *Server) handleSaveDraft(ctx context.Context, input *SaveDraftInput) (*DraftOutput, error) {
	req := input.Body
	draft := &domain.ReviewDraft{
		Thoughts:       req.Thoughts,
		Quote:          req.Quote,
		Emotions:       req.Emotions,
		Rating:         req.Rating,
		IsIntermediate: req.IsIntermediate,
		Generated:      req.Generated,
	}
	if err := s.services.Review.SaveDraft(ctx, input.ID, draft); err != nil {
		return nil, toAPIError(err)
	}

	saved, err := s.services.Review.LoadDraft(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &DraftOutput{Body: DraftResponse{Draft: saved}}, nil
}

func (s *Server) handleReviewSummary(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
	summary, err := s.services.Review.Summary(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SummaryOutput{Body: *summary}, nil
}

func (s *Server) handleListEmotions(_ context.Context, _ *struct{}) (*EmotionsOutput, error) {
	return &EmotionsOutput{Body: EmotionsResponse{Emotions: domain.Emotions()}}, nil
}
