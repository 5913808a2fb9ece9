package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/listenupapp/readinglog/internal/domain"
)

// SortKey orders shelf listings. Every key sorts descending.
type SortKey string

// Sort keys.
const (
	SortRecent        SortKey = "recent"
	SortProgress      SortKey = "progress"
	SortRating        SortKey = "rating"
	SortCompletedDate SortKey = "completedDate"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// ParseSortKey parses a sort key. Empty selects SortRecent.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortRecent, nil
	case SortRecent, SortProgress, SortRating, SortCompletedDate:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort key %q (use: recent, progress, rating, completedDate)", s)
	}
}

// ParseStatusFilter parses a status filter. "all" and empty disable filtering
// and yield the empty Status.
func ParseStatusFilter(s string) (domain.Status, error) {
	if v := strings.TrimSpace(s); v == "" || strings.EqualFold(v, StatusAll) {
		return "", nil
	}
	return domain.ParseStatus(s)
}

// FilterOptions selects and orders shelf books.
type FilterOptions struct {
	// SearchTerm is matched against titles, ignoring case.
	SearchTerm string
	// Status keeps only books in this state. Empty keeps all.
	Status domain.Status
	Sort   SortKey
}

// FilterAndSort returns the books matching opts, sorted descending by the
// sort key. Ties keep their input order; books without a rating or completion
// date sort last. The input slice is not modified.
func FilterAndSort(books []*domain.Book, opts FilterOptions) []*domain.Book {
	folder := cases.Fold()
	term := folder.String(strings.TrimSpace(opts.SearchTerm))

	out := make([]*domain.Book, 0, len(books))
	for _, b := range books {
		if opts.Status != "" && b.Status != opts.Status {
			continue
		}
		if term != "" && !strings.Contains(folder.String(b.Title), term) {
			continue
		}
		out = append(out, b)
	}

	if cmpFn := comparator(opts.Sort); cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func comparator(key SortKey) func(a, b *domain.Book) int {
	switch key {
	case SortRecent, "":
		return func(a, b *domain.Book) int {
			return b.AddedAt.Compare(a.AddedAt)
		}
	case SortProgress:
		return func(a, b *domain.Book) int {
			return cmp.Compare(b.ProgressPercent(), a.ProgressPercent())
		}
	case SortRating:
		return func(a, b *domain.Book) int {
			switch {
			case a.Rating == nil && b.Rating == nil:
				return 0
			case a.Rating == nil:
				return 1
			case b.Rating == nil:
				return -1
			}
			return cmp.Compare(*b.Rating, *a.Rating)
		}
	case SortCompletedDate:
		return func(a, b *domain.Book) int {
			switch {
			case a.CompletedDate == nil && b.CompletedDate == nil:
				return 0
			case a.CompletedDate == nil:
				return 1
			case b.CompletedDate == nil:
				return -1
			}
			return b.CompletedDate.Compare(*a.CompletedDate)
		}
	default:
		return nil
	}
}
