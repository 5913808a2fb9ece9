package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/id"
	"github.com/listenupapp/readinglog/internal/sse"
	"github.com/listenupapp/readinglog/internal/store"
)

// BookDraft is the input for adding a book to the shelf.
type BookDraft struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Pubdate     string
	Description string
	Cover       string
	Category    string
	// TotalPages falls back to 300 when not positive.
	TotalPages int
	// ReadCount falls back to 1 when below 1.
	ReadCount int
}

// BookPatch edits a shelf book. Nil fields are left unchanged.
type BookPatch struct {
	Title       *string  `json:"title" validate:"omitempty,notblank,max=500"`
	Author      *string  `json:"author" validate:"omitempty,notblank,max=300"`
	Publisher   *string  `json:"publisher" validate:"omitempty,max=300"`
	Pubdate     *string  `json:"pubdate" validate:"omitempty,max=40"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Cover       *string  `json:"cover" validate:"omitempty,max=2048"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	TotalPages  *int     `json:"totalPages" validate:"omitempty,gt=0"`
	ReadCount   *int     `json:"readCount" validate:"omitempty,min=1"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5,halfstep"`
}

// ShelfService owns the shelf: adding books, recording progress, and status transitions.
type ShelfService struct {
	store *store.Store
	c     Collaborators
}

// NewShelfService creates a new shelf service.
func NewShelfService(st *store.Store, c Collaborators) *ShelfService {
	return &ShelfService{
		store: st,
		c:     c.withDefaults(),
	}
}

// AddBook puts a new book on the shelf as want-to-read with a fresh id.
func (s *ShelfService) AddBook(ctx context.Context, d BookDraft) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.FromContext(err)
	}

	title := norm.NFC.String(strings.TrimSpace(d.Title))
	author := norm.NFC.String(strings.TrimSpace(d.Author))
	if title == "" || author == "" {
		details := map[string]string{}
		if title == "" {
			details["title"] = "is required"
		}
		if author == "" {
			details["author"] = "is required"
		}
		return nil, domainerrors.ValidationWithDetails("title and author are required", details)
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	totalPages := d.TotalPages
	if totalPages <= 0 {
		totalPages = domain.DefaultTotalPages
	}
	cover := d.Cover
	if strings.TrimSpace(cover) == "" {
		cover = domain.PlaceholderCover
	}

	now := s.c.Clock()
	book := &domain.Book{
		ID:          bookID,
		ISBN:        d.ISBN,
		Title:       title,
		Author:      author,
		Publisher:   d.Publisher,
		Pubdate:     d.Pubdate,
		Description: d.Description,
		Cover:       cover,
		Category:    d.Category,
		Status:      domain.StatusWantToRead,
		CurrentPage: 0,
		TotalPages:  totalPages,
		ReadCount:   max(1, d.ReadCount),
		AddedAt:     now,
		UpdatedAt:   now,
	}

	err = s.store.UpdateShelf(ctx, func(books []*domain.Book) ([]*domain.Book, error) {
		return append(books, book), nil
	})
	if err != nil {
		s.c.storageFailed("add", err)
		return nil, fmt.Errorf("add book: %w", err)
	}

	s.c.Logger.Info("book added",
		"book_id", book.ID,
		"title", book.Title,
		"total_pages", book.TotalPages,
	)
	s.c.Metrics.IncMutation("add")
	s.c.Events.Emit(sse.NewBookAddedEvent(book.Clone()))
	s.index(ctx, book)
	s.c.Notifier.Notify(bookAddedNotification(book))

	return book, nil
}

// AddFromCatalog adds a catalog search result. The ISBN is kept as data only.
// totalPages overrides the catalog page count when positive.
func (s *ShelfService) AddFromCatalog(ctx context.Context, b domain.Book, totalPages int) (*domain.Book, error) {
	if totalPages <= 0 {
		totalPages = b.TotalPages
	}
	return s.AddBook(ctx, BookDraft{
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Pubdate:     b.Pubdate,
		Description: b.Description,
		Cover:       b.Cover,
		Category:    b.Category,
		TotalPages:  totalPages,
	})
}

// UpdateProgress sets the current page. Pages outside [0, totalPages] are
// rejected with OUT_OF_RANGE and nothing changes. Reaching the last page
// completes the book; any page above zero starts a want-to-read book.
func (s *ShelfService) UpdateProgress(ctx context.Context, bookID string, newPage int) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.FromContext(err)
	}

	now := s.c.Clock()
	var justCompleted bool
	var totalPages int

	book, found, err := s.store.UpdateBook(ctx, bookID, func(b *domain.Book) error {
		totalPages = b.TotalPages
		if !b.InRange(newPage) {
			return domainerrors.OutOfRangef("page %d is outside 0..%d", newPage, b.TotalPages).
				WithDetails(map[string]int{"min": 0, "max": b.TotalPages})
		}

		b.CurrentPage = newPage
		if b.Status == domain.StatusWantToRead && newPage > 0 {
			b.Status = domain.StatusReading
		}
		if newPage == b.TotalPages && !b.IsCompleted() {
			b.Status = domain.StatusCompleted
			b.CompletedDate = &now
			justCompleted = true
		}
		b.UpdatedAt = now
		return nil
	})
	if !found && err == nil {
		return nil, notFound(bookID)
	}
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrOutOfRange) {
			s.c.Logger.Warn("progress rejected", "book_id", bookID, "page", newPage)
			s.c.Notifier.Notify(invalidPageNotification(totalPages))
			return nil, err
		}
		s.c.storageFailed("progress", err)
		return nil, fmt.Errorf("update progress: %w", err)
	}

	s.recordHistory(ctx, book)

	s.c.Logger.Info("progress updated",
		"book_id", book.ID,
		"page", book.CurrentPage,
		"status", book.Status,
	)
	s.c.Metrics.IncMutation("progress")
	s.c.Events.Emit(sse.NewBookUpdatedEvent(book.Clone()))
	s.index(ctx, book)
	s.c.Notifier.Notify(progressNotification(book))

	if justCompleted {
		s.c.Events.Emit(sse.NewBookCompletedEvent(book.Clone()))
		s.c.Notifier.Notify(completedNotification(book))
	}

	return book, nil
}

// StartReading moves a want-to-read book to reading. From any other state it
// returns the book unchanged.
func (s *ShelfService) StartReading(ctx context.Context, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.FromContext(err)
	}

	now := s.c.Clock()
	var changed bool

	book, found, err := s.store.UpdateBook(ctx, bookID, func(b *domain.Book) error {
		if b.Status != domain.StatusWantToRead {
			return nil
		}
		b.Status = domain.StatusReading
		b.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		s.c.storageFailed("start", err)
		return nil, fmt.Errorf("start reading: %w", err)
	}
	if !found {
		return nil, notFound(bookID)
	}

	if changed {
		s.c.Logger.Info("reading started", "book_id", book.ID)
		s.c.Metrics.IncMutation("start")
		s.c.Events.Emit(sse.NewBookUpdatedEvent(book.Clone()))
		s.index(ctx, book)
	} else {
		s.c.Logger.Debug("start reading ignored", "book_id", book.ID, "status", book.Status)
	}

	return book, nil
}

// MarkCompleted completes a book and sets currentPage to totalPages. Marking
// a completed book again only clamps currentPage; completedDate is kept.
func (s *ShelfService) MarkCompleted(ctx context.Context, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.FromContext(err)
	}

	now := s.c.Clock()
	var justCompleted, pageChanged bool

	book, found, err := s.store.UpdateBook(ctx, bookID, func(b *domain.Book) error {
		pageChanged = b.CurrentPage != b.TotalPages
		b.CurrentPage = b.TotalPages
		if !b.IsCompleted() {
			b.Status = domain.StatusCompleted
			b.CompletedDate = &now
			justCompleted = true
		}
		if justCompleted || pageChanged {
			b.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		s.c.storageFailed("complete", err)
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	if !found {
		return nil, notFound(bookID)
	}

	if pageChanged {
		s.recordHistory(ctx, book)
	}
	if justCompleted || pageChanged {
		s.c.Metrics.IncMutation("complete")
		s.c.Events.Emit(sse.NewBookUpdatedEvent(book.Clone()))
		s.index(ctx, book)
	}
	if justCompleted {
		s.c.Logger.Info("book completed", "book_id", book.ID)
		s.c.Events.Emit(sse.NewBookCompletedEvent(book.Clone()))
		s.c.Notifier.Notify(completedNotification(book))
	}

	return book, nil
}

// UpdateBook applies a patch of descriptive fields, rating, read count, and page count.
func (s *ShelfService) UpdateBook(ctx context.Context, bookID string, p BookPatch) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.FromContext(err)
	}
	if err := s.c.Validator.Validate(p); err != nil {
		return nil, err
	}

	now := s.c.Clock()
	book, found, err := s.store.UpdateBook(ctx, bookID, func(b *domain.Book) error {
		if p.TotalPages != nil && *p.TotalPages < b.CurrentPage {
			return domainerrors.OutOfRangef("totalPages %d is below current page %d", *p.TotalPages, b.CurrentPage)
		}
		p.apply(b)
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrOutOfRange) {
			return nil, err
		}
		s.c.storageFailed("update", err)
		return nil, fmt.Errorf("update book: %w", err)
	}
	if !found {
		return nil, notFound(bookID)
	}

	s.c.Logger.Info("book updated", "book_id", book.ID)
	s.c.Metrics.IncMutation("update")
	s.c.Events.Emit(sse.NewBookUpdatedEvent(book.Clone()))
	s.index(ctx, book)

	return book, nil
}

// Get returns the shelf book with id.
func (s *ShelfService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		s.c.storageFailed("get", err)
		return nil, err
	}
	if book == nil {
		return nil, notFound(bookID)
	}
	return book, nil
}

// List returns the shelf in insertion order.
func (s *ShelfService) List(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.LoadShelf(ctx)
	if err != nil {
		s.c.storageFailed("list", err)
		return nil, err
	}
	return books, nil
}

// History returns the progress snapshots of a shelf book.
func (s *ShelfService) History(ctx context.Context, bookID string) ([]domain.HistoryEntry, error) {
	if _, err := s.Get(ctx, bookID); err != nil {
		return nil, err
	}
	return s.store.LoadHistory(ctx, bookID)
}

// recordHistory appends a progress snapshot. Failures are logged only; the
// progress itself is already saved.
func (s *ShelfService) recordHistory(ctx context.Context, b *domain.Book) {
	entry := domain.HistoryEntry{
		Date:     s.c.today(),
		Page:     b.CurrentPage,
		Progress: b.ProgressPercent(),
	}
	if err := s.store.AppendHistory(ctx, b.ID, entry); err != nil {
		s.c.Logger.Warn("failed to record reading history", "book_id", b.ID, "error", err)
	}
}

func (s *ShelfService) index(ctx context.Context, b *domain.Book) {
	if err := s.c.Indexer.IndexBook(ctx, b); err != nil {
		s.c.Logger.Warn("failed to index book", "book_id", b.ID, "error", err)
	}
}

func (p *BookPatch) apply(b *domain.Book) {
	if p.Title != nil {
		b.Title = norm.NFC.String(strings.TrimSpace(*p.Title))
	}
	if p.Author != nil {
		b.Author = norm.NFC.String(strings.TrimSpace(*p.Author))
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.Pubdate != nil {
		b.Pubdate = *p.Pubdate
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Cover != nil {
		b.Cover = *p.Cover
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.TotalPages != nil {
		b.TotalPages = *p.TotalPages
	}
	if p.ReadCount != nil {
		b.ReadCount = *p.ReadCount
	}
	if p.Rating != nil {
		b.Rating = domain.CloneRating(p.Rating)
	}
}
