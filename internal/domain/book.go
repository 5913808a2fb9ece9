// Package domain contains the core entities of the reading log: books on the
// shelf, reviews, reading history, and the derived statistics.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the reading state of a shelf book.
type Status string

// Reading states. A book moves want-to-read -> reading -> completed.
const (
	StatusWantToRead Status = "want-to-read"
	StatusReading    Status = "reading"
	StatusCompleted  Status = "completed"
)

// legacyWishlist is an older label for StatusWantToRead still found in stored data.
const legacyWishlist = "wishlist"

// Defaults applied to new shelf books.
const (
	DefaultTotalPages = 300
	DefaultPublisher  = "unknown"
	DefaultCategory   = "other"
	PlaceholderCover  = "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=400&fit=crop"
)

// IsValid reports whether s is one of the canonical states.
func (s Status) IsValid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus parses a status label. "wishlist" is accepted as an alias of
// want-to-read; only the canonical label is ever written back.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == legacyWishlist {
		return StatusWantToRead, nil
	}
	st := Status(v)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q (use: want-to-read, reading, completed)", s)
	}
	return st, nil
}

// UnmarshalText normalizes legacy labels when decoding stored shelves.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Book is a catalog result or a shelf entry. Shelf identity is ID; ISBN is
// descriptive only and not unique across catalogs.
type Book struct {
	AddedAt       time.Time  `json:"addedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	ID            string     `json:"id,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Publisher     string     `json:"publisher,omitempty"`
	Pubdate       string     `json:"pubdate,omitempty"`
	Description   string     `json:"description,omitempty"`
	Cover         string     `json:"cover"`
	Category      string     `json:"category,omitempty"`
	Status        Status     `json:"status,omitempty"`
	CurrentPage   int        `json:"currentPage"`
	TotalPages    int        `json:"totalPages"`
	ReadCount     int        `json:"readCount,omitempty"`
	HasReview     bool       `json:"hasReview"`
}

// ProgressPercent returns round(currentPage/totalPages*100) clamped to [0,100].
func (b *Book) ProgressPercent() int {
	return PercentOf(b.CurrentPage, b.TotalPages)
}

// ShowsProgress is false for want-to-read books; their progress fields are kept but not displayed.
func (b *Book) ShowsProgress() bool {
	return b.Status != StatusWantToRead
}

// IsCompleted reports whether the book is finished.
func (b *Book) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// RemainingPages returns the pages left to read, never negative.
func (b *Book) RemainingPages() int {
	return max(0, b.TotalPages-b.CurrentPage)
}

// InRange reports whether page is a valid progress value for this book.
func (b *Book) InRange(page int) bool {
	return page >= 0 && page <= b.TotalPages
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (b *Book) Clone() *Book {
	c := *b
	c.Rating = CloneRating(b.Rating)
	if b.CompletedDate != nil {
		d := *b.CompletedDate
		c.CompletedDate = &d
	}
	return &c
}

// PercentOf returns round(part/whole*100) clamped to [0,100]. A non-positive whole yields 0.
func PercentOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	p := int(math.Round(float64(part) / float64(whole) * 100))
	return min(100, max(0, p))
}
