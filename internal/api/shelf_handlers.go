package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglog/internal/color"
	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf",
		Summary:     "List shelf",
		Description: "Returns shelf books filtered by title and status, sorted descending by the chosen key",
		Tags:        []string{"Shelf"},
	}, s.handleListShelf)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addToShelf",
		Method:        http.MethodPost,
		Path:          "/api/v1/shelf",
		Summary:       "Add book to shelf",
		Description:   "Adds a catalog result to the shelf as want-to-read",
		Tags:          []string{"Shelf"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddToShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a shelf book by ID",
		Tags:        []string{"Shelf"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Edits descriptive fields, rating, read count, or page count",
		Tags:        []string{"Shelf"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Update progress",
		Description: "Sets the current page. Reaching the last page completes the book.",
		Tags:        []string{"Shelf"},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "startReading",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/start",
		Summary:     "Start reading",
		Description: "Moves a want-to-read book to reading",
		Tags:        []string{"Shelf"},
	}, s.handleStartReading)

	huma.Register(s.api, huma.Operation{
		OperationID: "completeBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/complete",
		Summary:     "Mark completed",
		Description: "Completes a book and moves its progress to the last page",
		Tags:        []string{"Shelf"},
	}, s.handleCompleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/history",
		Summary:     "Get reading history",
		Description: "Returns the progress snapshots recorded for a book",
		Tags:        []string{"Shelf"},
	}, s.handleGetHistory)
}

// === DTOs ===

// BookResponse is a shelf book with its derived display fields.
type BookResponse struct {
	domain.Book
	Progress      int         `json:"progress" doc:"Percent read, 0-100"`
	ShowsProgress bool        `json:"showsProgress" doc:"False for want-to-read books"`
	Spine         color.Spine `json:"spine" doc:"Shelf spine styling"`
}

func newBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		Book:          *b,
		Progress:      b.ProgressPercent(),
		ShowsProgress: b.ShowsProgress(),
		Spine:         color.ForBook(b.Title, b.TotalPages),
	}
}

// ListShelfInput contains filter and sort parameters.
type ListShelfInput struct {
	Query  string `query:"q" doc:"Case-insensitive title filter"`
	Status string `query:"status" enum:"all,want-to-read,reading,completed,wishlist" doc:"Status filter"`
	Sort   string `query:"sort" enum:"recent,progress,rating,completedDate" doc:"Sort key, always descending"`
}

// ShelfResponse contains the filtered shelf.
type ShelfResponse struct {
	Books  []BookResponse      `json:"books" doc:"Filtered, sorted books"`
	Counts domain.StatusCounts `json:"counts" doc:"Counts over the whole shelf, before filtering"`
}

// ShelfOutput wraps the shelf response for Huma.
type ShelfOutput struct {
	Body ShelfResponse
}

// AddBookRequest is a catalog result to add to the shelf.
type AddBookRequest struct {
	ISBN        string `json:"isbn,omitempty" maxLength:"32" doc:"ISBN, kept as data only"`
	Title       string `json:"title" minLength:"1" maxLength:"500" doc:"Title"`
	Author      string `json:"author" minLength:"1" maxLength:"300" doc:"Author"`
	Publisher   string `json:"publisher,omitempty" doc:"Publisher"`
	Pubdate     string `json:"pubdate,omitempty" doc:"Publication date"`
	Description string `json:"description,omitempty" doc:"Description"`
	Cover       string `json:"cover,omitempty" doc:"Cover image URL"`
	Category    string `json:"category,omitempty" doc:"Category"`
	TotalPages  int    `json:"totalPages,omitempty" doc:"Page count; 300 when missing"`
}

// AddBookInput wraps the add request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookIDInput identifies a shelf book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// UpdateBookRequest edits a book. Omitted fields are unchanged.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" doc:"Title"`
	Author      *string  `json:"author,omitempty" doc:"Author"`
	Publisher   *string  `json:"publisher,omitempty" doc:"Publisher"`
	Pubdate     *string  `json:"pubdate,omitempty" doc:"Publication date"`
	Description *string  `json:"description,omitempty" doc:"Description"`
	Cover       *string  `json:"cover,omitempty" doc:"Cover image URL"`
	Category    *string  `json:"category,omitempty" doc:"Category"`
	TotalPages  *int     `json:"totalPages,omitempty" doc:"Page count"`
	ReadCount   *int     `json:"readCount,omitempty" doc:"Times read"`
	Rating      *float64 `json:"rating,omitempty" doc:"Rating 0-5 in steps of 0.5"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// ProgressRequest sets the current page.
type ProgressRequest struct {
	Page int `json:"page" doc:"New current page, 0 to totalPages"`
}

// ProgressInput wraps the progress request for Huma.
type ProgressInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body ProgressRequest
}

// HistoryResponse lists a book's progress snapshots.
type HistoryResponse struct {
	History []domain.HistoryEntry `json:"history" doc:"Snapshots in recorded order"`
}

// HistoryOutput wraps the history response for Huma.
type HistoryOutput struct {
	Body HistoryResponse
}

// === Handlers ===

func (s *Server) handleListShelf(ctx context.Context, input *ListShelfInput) (*ShelfOutput, error) {
	status, err := service.ParseStatusFilter(input.Status)
	if err != nil {
		return nil, toAPIError(domainerrors.Validation(err.Error()))
	}
	sortKey, err := service.ParseSortKey(input.Sort)
	if err != nil {
		return nil, toAPIError(domainerrors.Validation(err.Error()))
	}

	books, err := s.services.Shelf.List(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}

	var counts domain.StatusCounts
	for _, b := range books {
		switch b.Status {
		case domain.StatusWantToRead:
			counts.WantToRead++
		case domain.StatusReading:
			counts.Reading++
		case domain.StatusCompleted:
			counts.Completed++
		}
	}

	filtered := service.FilterAndSort(books, service.FilterOptions{
		SearchTerm: input.Query,
		Status:     status,
		Sort:       sortKey,
	})

	resp := ShelfResponse{
		Books:  make([]BookResponse, len(filtered)),
		Counts: counts,
	}
	for i, b := range filtered {
		resp.Books[i] = newBookResponse(b)
	}
	return &ShelfOutput{Body: resp}, nil
}

func (s *Server) handleAddToShelf(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	req := input.Body
	book, err := s.services.Shelf.AddFromCatalog(ctx, domain.Book{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Pubdate:     req.Pubdate,
		Description: req.Description,
		Cover:       req.Cover,
		Category:    req.Category,
		TotalPages:  req.TotalPages,
	}, 0)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Shelf.Get(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	req := input.Body
	book, err := s.services.Shelf.UpdateBook(ctx, input.ID, service.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Pubdate:     req.Pubdate,
		Description: req.Description,
		Cover:       req.Cover,
		Category:    req.Category,
		TotalPages:  req.TotalPages,
		ReadCount:   req.ReadCount,
		Rating:      req.Rating,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *ProgressInput) (*BookOutput, error) {
	book, err := s.services.Shelf.UpdateProgress(ctx, input.ID, input.Body.Page)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleStartReading(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Shelf.StartReading(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleCompleteBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Shelf.MarkCompleted(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleGetHistory(ctx context.Context, input *BookIDInput) (*HistoryOutput, error) {
	history, err := s.services.Shelf.History(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	return &HistoryOutput{Body: HistoryResponse{History: history}}, nil
}
