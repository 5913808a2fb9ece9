package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/id"
	"github.com/listenupapp/readinglog/internal/sse"
	"github.com/listenupapp/readinglog/internal/store"
)

// ReviewSubmission is the final composer state handed to SaveReview.
type ReviewSubmission struct {
	domain.ReviewInput
	// Generated is the generated text, if any. It takes precedence over Thoughts.
	Generated string
}

// ReviewService composes, drafts, and saves reviews.
type ReviewService struct {
	store     *store.Store
	generator generator.Generator
	c         Collaborators
}

// NewReviewService creates a new review service.
func NewReviewService(st *store.Store, gen generator.Generator, c Collaborators) *ReviewService {
	return &ReviewService{
		store:     st,
		generator: gen,
		c:         c.withDefaults(),
	}
}

// ToggleEmotion adds tag to selected when absent and removes it when present.
// Tags outside the vocabulary are rejected.
func (s *ReviewService) ToggleEmotion(selected []domain.Emotion, tag domain.Emotion) ([]domain.Emotion, error) {
	if !tag.IsValid() {
		return nil, domainerrors.Validationf("unknown emotion %q", tag)
	}
	return domain.ToggleEmotion(selected, tag), nil
}

// GenerateReview produces review text for a book and stores it in the book's draft.
// It needs non-blank thoughts or at least one emotion.
func (s *ReviewService) GenerateReview(ctx context.Context, bookID string, in domain.ReviewInput) (string, error) {
	if _, err := s.book(ctx, bookID); err != nil {
		return "", err
	}
	if !in.HasContent() {
		s.c.Notifier.Notify(missingContentNotification())
		return "", domainerrors.ValidationWithDetails("thoughts or emotions are required",
			map[string]string{"thoughts": "write your thoughts or pick an emotion"})
	}
	if err := s.c.Validator.Validate(in); err != nil {
		return "", err
	}

	text, err := s.generator.Generate(ctx, in)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrCanceled) {
			s.c.Logger.Debug("review generation canceled", "book_id", bookID)
			return "", err
		}
		return "", fmt.Errorf("generate review: %w", err)
	}

	draft := &domain.ReviewDraft{
		Thoughts:       in.Thoughts,
		Quote:          in.Quote,
		Emotions:       slices.Clone(in.Emotions),
		Rating:         domain.CloneRating(in.Rating),
		IsIntermediate: in.IsIntermediate,
		Generated:      text,
		UpdatedAt:      s.c.Clock(),
	}
	if err := s.store.SaveDraft(ctx, bookID, draft); err != nil {
		// The text is still returned; only the draft copy is lost.
		s.c.storageFailed("draft", err)
	}

	s.c.Logger.Info("review generated", "book_id", bookID, "emotions", len(in.Emotions))
	s.c.Metrics.IncReviewGenerated()
	s.c.Notifier.Notify(generatedNotification())

	return text, nil
}

// SaveReview appends a review for the book, marks the book as reviewed, sets
// its rating when one was given, and clears the draft.
func (s *ReviewService) SaveReview(ctx context.Context, bookID string, sub ReviewSubmission) (*domain.Review, error) {
	book, err := s.book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.c.Validator.Validate(sub.ReviewInput); err != nil {
		return nil, err
	}

	content := sub.Generated
	if strings.TrimSpace(content) == "" {
		content = sub.Thoughts
	}
	if strings.TrimSpace(content) == "" {
		s.c.Notifier.Notify(missingContentNotification())
		return nil, domainerrors.ValidationWithDetails("review content is empty",
			map[string]string{"thoughts": "is required when nothing was generated"})
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ID:        reviewID,
		BookID:    book.ID,
		Type:      domain.ReviewTypeFor(book, sub.IsIntermediate),
		Date:      s.c.today(),
		Rating:    domain.CloneRating(sub.Rating),
		Content:   content,
		Emotions:  slices.Clone(sub.Emotions),
		Quote:     sub.Quote,
		Category:  book.Category,
		ReadCount: book.ReadCount,
	}
	if review.Emotions == nil {
		review.Emotions = []domain.Emotion{}
	}

	if err := s.store.AppendReview(ctx, *review); err != nil {
		s.c.storageFailed("review", err)
		return nil, fmt.Errorf("save review: %w", err)
	}

	now := s.c.Clock()
	updated, _, err := s.store.UpdateBook(ctx, book.ID, func(b *domain.Book) error {
		b.HasReview = true
		// An unrated review keeps whatever rating the book already had.
		if sub.Rating != nil {
			b.Rating = domain.CloneRating(sub.Rating)
		}
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		s.c.storageFailed("review", err)
		return nil, fmt.Errorf("mark book reviewed: %w", err)
	}

	if err := s.store.DeleteDraft(ctx, book.ID); err != nil {
		s.c.Logger.Warn("failed to clear review draft", "book_id", book.ID, "error", err)
	}

	if err := s.c.Indexer.IndexReview(ctx, review, updated); err != nil {
		s.c.Logger.Warn("failed to index review", "review_id", review.ID, "error", err)
	}
	if updated != nil {
		if err := s.c.Indexer.IndexBook(ctx, updated); err != nil {
			s.c.Logger.Warn("failed to index book", "book_id", updated.ID, "error", err)
		}
		s.c.Events.Emit(sse.NewBookUpdatedEvent(updated.Clone()))
	}

	s.c.Logger.Info("review saved",
		"book_id", book.ID,
		"review_id", review.ID,
		"type", review.Type,
	)
	s.c.Metrics.IncReviewSaved(string(review.Type))
	s.c.Events.Emit(sse.NewReviewSavedEvent(review))
	s.c.Notifier.Notify(reviewSavedNotification(book))

	return review, nil
}

// SaveDraft stores the composer form for a book.
func (s *ReviewService) SaveDraft(ctx context.Context, bookID string, d *domain.ReviewDraft) error {
	if _, err := s.book(ctx, bookID); err != nil {
		return err
	}
	if err := s.c.Validator.Validate(d); err != nil {
		return err
	}

	draft := *d
	draft.Emotions = slices.Clone(d.Emotions)
	draft.Rating = domain.CloneRating(d.Rating)
	draft.UpdatedAt = s.c.Clock()

	if err := s.store.SaveDraft(ctx, bookID, &draft); err != nil {
		s.c.storageFailed("draft", err)
		return fmt.Errorf("save draft: %w", err)
	}
	s.c.Logger.Debug("review draft saved", "book_id", bookID)
	return nil
}

// LoadDraft returns the draft for a book, or nil when there is none.
func (s *ReviewService) LoadDraft(ctx context.Context, bookID string) (*domain.ReviewDraft, error) {
	if _, err := s.book(ctx, bookID); err != nil {
		return nil, err
	}
	d, err := s.store.LoadDraft(ctx, bookID)
	if err != nil {
		s.c.storageFailed("draft", err)
		return nil, err
	}
	return d, nil
}

// ListReviews returns a book's reviews, oldest first.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string) ([]domain.Review, error) {
	if _, err := s.book(ctx, bookID); err != nil {
		return nil, err
	}
	reviews, err := s.store.LoadReviews(ctx, bookID)
	if err != nil {
		s.c.storageFailed("reviews", err)
		return nil, err
	}
	return reviews, nil
}

// Summary aggregates every saved review.
func (s *ReviewService) Summary(ctx context.Context) (*domain.ReviewSummary, error) {
	reviews, err := s.store.LoadAllReviews(ctx)
	if err != nil {
		s.c.storageFailed("reviews", err)
		return nil, err
	}
	summary := Summarize(reviews)
	return &summary, nil
}

// Summarize reduces reviews to counts, the average rating of rated reviews,
// and the reader label of the most frequent emotion.
func Summarize(reviews []domain.Review) domain.ReviewSummary {
	counts := make(map[domain.Emotion]int)
	var ratingSum float64
	var rated int

	for i := range reviews {
		r := &reviews[i]
		if r.Rating != nil {
			ratingSum += *r.Rating
			rated++
		}
		for _, e := range r.Emotions {
			counts[e]++
		}
	}

	vocabulary := domain.Emotions()
	var emotionCounts []domain.EmotionCount
	for _, e := range vocabulary {
		if n := counts[e]; n > 0 {
			emotionCounts = append(emotionCounts, domain.EmotionCount{Emotion: e, Count: n})
		}
	}
	// Most frequent first; ties keep vocabulary order.
	slices.SortStableFunc(emotionCounts, func(a, b domain.EmotionCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	summary := domain.ReviewSummary{
		EmotionCounts: emotionCounts,
		Count:         len(reviews),
	}
	if summary.EmotionCounts == nil {
		summary.EmotionCounts = []domain.EmotionCount{}
	}
	if len(emotionCounts) > 0 {
		summary.TopEmotion = emotionCounts[0].Emotion
	}
	summary.Vibe = domain.VibeFor(summary.TopEmotion)
	if rated > 0 {
		summary.AverageRating = roundTenth(ratingSum / float64(rated))
		summary.HasRating = true
	}
	return summary
}

func (s *ReviewService) book(ctx context.Context, bookID string) (*domain.Book, error) {
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

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
