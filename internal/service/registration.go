package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/validation"
)

// RegistrationForm is a book entered by hand. Only title and author are required.
type RegistrationForm struct {
	Title       string `json:"title" validate:"notblank,max=500"`
	Author      string `json:"author" validate:"notblank,max=300"`
	Publisher   string `json:"publisher" validate:"max=300"`
	Pubdate     string `json:"pubdate" validate:"max=40"`
	Description string `json:"description" validate:"max=5000"`
	Cover       string `json:"cover" validate:"max=2048"`
	Category    string `json:"category" validate:"max=100"`
	// TotalPages is free text; anything but a positive integer means 300.
	TotalPages string `json:"totalPages"`
}

// RegistrationService validates hand-entered books and adds them to the shelf.
type RegistrationService struct {
	shelf     *ShelfService
	validator *validation.Validator
	c         Collaborators
}

// NewRegistrationService creates a new registration service.
func NewRegistrationService(shelf *ShelfService, v *validation.Validator, c Collaborators) *RegistrationService {
	if v == nil {
		v = validation.New()
	}
	return &RegistrationService{
		shelf:     shelf,
		validator: v,
		c:         c.withDefaults(),
	}
}

// Register validates the form, applies defaults, and adds the book as want-to-read.
// Unknown categories are kept as entered.
func (s *RegistrationService) Register(ctx context.Context, form RegistrationForm) (*domain.Book, error) {
	if err := s.validator.Validate(form); err != nil {
		s.c.Logger.Warn("registration rejected", "error", err)
		s.c.Notifier.Notify(missingFieldsNotification())
		return nil, err
	}

	return s.shelf.AddBook(ctx, form.draft())
}

// Categories returns the categories offered on the registration form.
func (s *RegistrationService) Categories() []string {
	return domain.Categories()
}

func (f RegistrationForm) draft() BookDraft {
	return BookDraft{
		Title:       f.Title,
		Author:      f.Author,
		Publisher:   orDefault(f.Publisher, domain.DefaultPublisher),
		Pubdate:     strings.TrimSpace(f.Pubdate),
		Description: strings.TrimSpace(f.Description),
		Cover:       orDefault(f.Cover, domain.PlaceholderCover),
		Category:    orDefault(f.Category, domain.DefaultCategory),
		TotalPages:  ParsePageCount(f.TotalPages),
	}
}

// ParsePageCount parses a page count, falling back to 300 when s is not a
// positive integer.
func ParsePageCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return domain.DefaultTotalPages
	}
	return n
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
