package domain

import (
	"slices"
	"strings"
	"time"
)

// ReviewType distinguishes a finished-book review from one written mid-read.
type ReviewType string

// Review types.
const (
	ReviewComplete ReviewType = "완독"
	ReviewInterim  ReviewType = "중간독후감"
)

// DateLayout is the calendar date format used for reviews and history.
const DateLayout = "2006-01-02"

// Review is a saved reflection. Reviews are append-only.
type Review struct {
	Rating    *float64   `json:"rating,omitempty"`
	ID        string     `json:"id"`
	BookID    string     `json:"bookId"`
	Type      ReviewType `json:"type"`
	Date      string     `json:"date"`
	Content   string     `json:"content"`
	Quote     string     `json:"quote,omitempty"`
	Category  string     `json:"category,omitempty"`
	Emotions  []Emotion  `json:"emotions"`
	ReadCount int        `json:"readCount,omitempty"`
}

// ReviewDraft is the in-progress composer form, persisted per book until the review is saved.
type ReviewDraft struct {
	UpdatedAt      time.Time `json:"updatedAt"`
	Rating         *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5,halfstep"`
	Thoughts       string    `json:"thoughts" validate:"max=10000"`
	Quote          string    `json:"quote" validate:"max=2000"`
	Generated      string    `json:"generated,omitempty"`
	Emotions       []Emotion `json:"emotions" validate:"dive,emotion"`
	IsIntermediate bool      `json:"isIntermediate"`
}

// ReviewInput is what the composer hands to the generator and to save.
// A nil Rating means the reader left the book unrated.
type ReviewInput struct {
	Rating         *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5,halfstep"`
	Thoughts       string    `json:"thoughts" validate:"max=10000"`
	Quote          string    `json:"quote" validate:"max=2000"`
	Emotions       []Emotion `json:"emotions" validate:"dive,emotion"`
	IsIntermediate bool      `json:"isIntermediate"`
}

// HasContent reports whether there is something to write about:
// non-blank thoughts or at least one emotion.
func (in ReviewInput) HasContent() bool {
	return strings.TrimSpace(in.Thoughts) != "" || len(in.Emotions) > 0
}

// Input returns the draft's fields as composer input.
func (d *ReviewDraft) Input() ReviewInput {
	return ReviewInput{
		Thoughts:       d.Thoughts,
		Quote:          d.Quote,
		Emotions:       slices.Clone(d.Emotions),
		Rating:         CloneRating(d.Rating),
		IsIntermediate: d.IsIntermediate,
	}
}

// CloneRating copies a rating so the copy does not alias r.
func CloneRating(r *float64) *float64 {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}

// ReviewTypeFor picks the review type: complete when the book is finished or
// the writer did not mark the review as interim.
func ReviewTypeFor(b *Book, isIntermediate bool) ReviewType {
	if b.IsCompleted() || !isIntermediate {
		return ReviewComplete
	}
	return ReviewInterim
}
