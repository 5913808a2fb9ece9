package service

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/store"
)

// DefaultYearlyGoal is the number of books a reader aims to finish per year.
const DefaultYearlyGoal = 24

// StatsService derives progress charts and shelf-wide statistics.
type StatsService struct {
	store      *store.Store
	yearlyGoal int
	c          Collaborators
}

// NewStatsService creates a new stats service. A non-positive goal uses DefaultYearlyGoal.
func NewStatsService(st *store.Store, yearlyGoal int, c Collaborators) *StatsService {
	if yearlyGoal <= 0 {
		yearlyGoal = DefaultYearlyGoal
	}
	return &StatsService{
		store:      st,
		yearlyGoal: yearlyGoal,
		c:          c.withDefaults(),
	}
}

// ComputeStats derives a book's progress figures from its history.
// The completion estimate is nil when the weekly average is zero.
func ComputeStats(b *domain.Book, history []domain.HistoryEntry) domain.BookStats {
	weekly := int(math.Round(float64(b.CurrentPage) / float64(max(1, len(history)))))
	remaining := b.RemainingPages()

	stats := domain.BookStats{
		ProgressPercent: b.ProgressPercent(),
		WeeklyAverage:   weekly,
		RemainingPages:  remaining,
	}
	if weekly > 0 {
		weeks := int(math.Ceil(float64(remaining) / float64(weekly)))
		stats.EstimatedCompletionWeeks = &weeks
	}
	return stats
}

// Series returns chart points in date order. Entries on the same date keep
// their recorded order.
func Series(history []domain.HistoryEntry) []domain.ChartPoint {
	points := make([]domain.ChartPoint, len(history))
	for i, h := range history {
		points[i] = domain.ChartPoint{Date: h.Date, Page: h.Page, Progress: h.Progress}
	}
	slices.SortStableFunc(points, func(a, b domain.ChartPoint) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return points
}

// BookProgress is a book's stats together with its chart series.
type BookProgress struct {
	Stats  domain.BookStats    `json:"stats"`
	Series []domain.ChartPoint `json:"series"`
}

// BookStats loads a book and its history and derives its progress figures.
func (s *StatsService) BookStats(ctx context.Context, bookID string) (*BookProgress, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		s.c.storageFailed("stats", err)
		return nil, err
	}
	if book == nil {
		return nil, notFound(bookID)
	}
	history, err := s.store.LoadHistory(ctx, bookID)
	if err != nil {
		s.c.storageFailed("stats", err)
		return nil, err
	}
	return &BookProgress{
		Stats:  ComputeStats(book, history),
		Series: Series(history),
	}, nil
}

// Dashboard aggregates the whole shelf.
func (s *StatsService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	books, err := s.store.LoadShelf(ctx)
	if err != nil {
		s.c.storageFailed("stats", err)
		return nil, err
	}

	var dates []string
	for _, b := range books {
		history, err := s.store.LoadHistory(ctx, b.ID)
		if err != nil {
			s.c.storageFailed("stats", err)
			return nil, err
		}
		for _, h := range history {
			dates = append(dates, h.Date)
		}
	}

	d := BuildDashboard(books, s.yearlyGoal)
	d.CurrentStreak, d.LongestStreak = Streaks(dates, s.c.Clock())

	s.c.Logger.Debug("dashboard computed", "count", d.Counts.Total())
	return &d, nil
}

// BuildDashboard reduces the shelf to aggregate figures. The average rating
// covers completed books that have a rating; it is 0 when there are none.
func BuildDashboard(books []*domain.Book, yearlyGoal int) domain.Dashboard {
	d := domain.Dashboard{YearlyGoal: yearlyGoal}
	perMonth := make(map[string]int)
	var ratingSum float64

	for _, b := range books {
		d.TotalPagesRead += b.CurrentPage

		switch b.Status {
		case domain.StatusWantToRead:
			d.Counts.WantToRead++
		case domain.StatusReading:
			d.Counts.Reading++
		case domain.StatusCompleted:
			d.Counts.Completed++
			d.CompletedPages += b.TotalPages
			if b.Rating != nil {
				ratingSum += *b.Rating
				d.RatedBooks++
			}
			if b.CompletedDate != nil {
				perMonth[b.CompletedDate.Format("2006-01")]++
			}
		}
	}

	if d.RatedBooks > 0 {
		d.AverageRating = roundTenth(ratingSum / float64(d.RatedBooks))
		d.HasRating = true
	}

	months := make([]string, 0, len(perMonth))
	for m := range perMonth {
		months = append(months, m)
	}
	slices.Sort(months)
	d.BooksPerMonth = make([]domain.MonthCount, 0, len(months))
	for _, m := range months {
		d.BooksPerMonth = append(d.BooksPerMonth, domain.MonthCount{Month: m, Count: perMonth[m]})
	}

	if yearlyGoal > 0 {
		d.GoalCompletionRate = roundTenth(float64(d.Counts.Completed) / float64(yearlyGoal) * 100)
		d.RemainingToGoal = max(0, yearlyGoal-d.Counts.Completed)
	}
	return d
}

// Streaks computes the current and longest runs of consecutive reading days.
// The current streak counts only if the last reading day is today or yesterday.
func Streaks(dates []string, now time.Time) (current, longest int) {
	days := make([]string, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(dateLayout, d); err != nil || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0, 0
	}
	slices.Sort(days)

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		curr, _ := time.Parse(dateLayout, days[i])
		prev, _ := time.Parse(dateLayout, days[i-1])
		if prev.Equal(curr.AddDate(0, 0, -1)) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	last := days[len(days)-1]
	if last != today && last != yesterday {
		return 0, longest
	}

	current = 1
	check, _ := time.Parse(dateLayout, last)
	for {
		check = check.AddDate(0, 0, -1)
		if !seen[check.Format(dateLayout)] {
			break
		}
		current++
	}
	return current, longest
}
