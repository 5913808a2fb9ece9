// Package search provides full-text search over the shelf and saved reviews
// using Bleve. Books and reviews share one index and are told apart by type.
package search

import (
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
)

// DocType discriminates documents in the shared index.
type DocType string

// Document types.
const (
	DocTypeBook   DocType = "book"
	DocTypeReview DocType = "review"
)

// Document is the flattened form of a book or review. Reviews carry the
// title and author of their book so a search for the book finds them too.
type Document struct {
	Rating      *float64
	ID          string
	Type        DocType
	BookID      string
	Title       string
	Author      string
	Publisher   string
	Description string
	Content     string
	Quote       string
	Category    string
	Status      string
	ReviewType  string
	Emotions    []string
	Progress    int
	UpdatedAt   int64 // unix millis
}

// ToMap converts the document to the field names used by the mapping.
// Empty optional fields are left out.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"book_id":    d.BookID,
		"title":      d.Title,
		"updated_at": d.UpdatedAt,
	}

	optional := map[string]string{
		"author":      d.Author,
		"publisher":   d.Publisher,
		"description": d.Description,
		"content":     d.Content,
		"quote":       d.Quote,
		"category":    d.Category,
		"status":      d.Status,
		"review_type": d.ReviewType,
	}
	for k, v := range optional {
		if v != "" {
			m[k] = v
		}
	}

	if len(d.Emotions) > 0 {
		m["emotions"] = d.Emotions
	}
	if d.Type == DocTypeBook {
		m["progress"] = d.Progress
	}
	if d.Rating != nil {
		m["rating"] = *d.Rating
	}
	return m
}

// BookDocument flattens a shelf book.
func BookDocument(b *domain.Book) *Document {
	doc := &Document{
		ID:          b.ID,
		Type:        DocTypeBook,
		BookID:      b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Description: b.Description,
		Category:    b.Category,
		Status:      string(b.Status),
		Progress:    b.ProgressPercent(),
		UpdatedAt:   millis(b.UpdatedAt, b.AddedAt),
	}
	if b.Rating != nil {
		r := *b.Rating
		doc.Rating = &r
	}
	return doc
}

// ReviewDocument flattens a review. book may be nil.
func ReviewDocument(r *domain.Review, book *domain.Book) *Document {
	doc := &Document{
		ID:         r.ID,
		Type:       DocTypeReview,
		BookID:     r.BookID,
		Content:    r.Content,
		Quote:      r.Quote,
		Category:   r.Category,
		ReviewType: string(r.Type),
	}
	for _, e := range r.Emotions {
		doc.Emotions = append(doc.Emotions, string(e))
	}
	if r.Rating != nil {
		v := *r.Rating
		doc.Rating = &v
	}
	if t, err := time.Parse(domain.DateLayout, r.Date); err == nil {
		doc.UpdatedAt = t.UnixMilli()
	}
	if book != nil {
		doc.Title = book.Title
		doc.Author = book.Author
	}
	return doc
}

func millis(ts ...time.Time) int64 {
	for _, t := range ts {
		if !t.IsZero() {
			return t.UnixMilli()
		}
	}
	return 0
}
