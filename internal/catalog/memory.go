package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
)

// DefaultBooks returns the built-in catalog.
func DefaultBooks() []domain.Book {
	return []domain.Book{
		{
			ISBN:        "9788936434267",
			Title:       "달러구트 꿈 백화점",
			Author:      "이미예",
			Publisher:   "팩토리나인",
			Pubdate:     "2020-07-08",
			Description: "잠들어야만 입장할 수 있는 신비로운 꿈 백화점 이야기",
			Cover:       "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=200&h=300&fit=crop",
		},
		{
			ISBN:        "9788954429467",
			Title:       "미드나이트 라이브러리",
			Author:      "매트 헤이그",
			Publisher:   "인플루엔셜",
			Pubdate:     "2021-03-10",
			Description: "인생의 갈림길에서 만나는 무한한 가능성의 도서관",
			Cover:       "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=200&h=300&fit=crop",
		},
		{
			ISBN:        "9788936433598",
			Title:       "보건교사 안은영",
			Author:      "정세랑",
			Publisher:   "민음사",
			Pubdate:     "2015-03-20",
			Description: "학교에서 벌어지는 초자연적 현상을 다루는 보건교사의 이야기",
			Cover:       "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=200&h=300&fit=crop",
		},
	}
}

// MemoryCatalog searches a fixed list of books with a simulated delay.
type MemoryCatalog struct {
	books   []domain.Book
	latency time.Duration
	logger  *slog.Logger
}

// MemoryOption configures a MemoryCatalog.
type MemoryOption func(*MemoryCatalog)

// WithBooks replaces the catalog contents. Duplicate ISBNs are allowed.
func WithBooks(books []domain.Book) MemoryOption {
	return func(c *MemoryCatalog) { c.books = slices.Clone(books) }
}

// WithLatency sets the simulated delay before results are returned.
func WithLatency(d time.Duration) MemoryOption {
	return func(c *MemoryCatalog) { c.latency = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) MemoryOption {
	return func(c *MemoryCatalog) { c.logger = logger.OrDiscard(l) }
}

// NewMemoryCatalog creates a catalog over DefaultBooks unless WithBooks is given.
func NewMemoryCatalog(opts ...MemoryOption) *MemoryCatalog {
	c := &MemoryCatalog{
		books:  DefaultBooks(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search implements Provider. A book matches when query is a case-sensitive
// substring of its title or its author.
func (c *MemoryCatalog) Search(ctx context.Context, query string) ([]domain.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	if err := sleep(ctx, c.latency); err != nil {
		c.logger.Debug("catalog search abandoned", "query", query)
		return nil, err
	}

	var results []domain.Book
	for _, b := range c.books {
		if strings.Contains(b.Title, query) || strings.Contains(b.Author, query) {
			results = append(results, b)
		}
	}

	c.logger.Debug("catalog search", "query", query, "count", len(results))
	return results, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.FromContext(err)
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return domainerrors.FromContext(ctx.Err())
	}
}
