package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/generator"
)

// column is a fixed display width; Korean runes count as two cells.
type column struct {
	title string
	width int
}

func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func printHeader(w io.Writer, cols []column) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = cell(c.title, c.width)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}

func printRow(w io.Writer, cols []column, values ...string) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = cell(values[i], c.width)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}

var shelfColumns = []column{
	{"ID", 26},
	{"TITLE", 30},
	{"AUTHOR", 16},
	{"STATUS", 12},
	{"PROGRESS", 14},
	{"ADDED", 14},
}

func printShelf(w io.Writer, books []*domain.Book, now time.Time) {
	if len(books) == 0 {
		fmt.Fprintln(w, "서재가 비어 있어요.")
		return
	}
	printHeader(w, shelfColumns)
	for _, b := range books {
		printRow(w, shelfColumns,
			b.ID,
			b.Title,
			b.Author,
			string(b.Status),
			progressCell(b),
			humanize.RelTime(b.AddedAt, now, "ago", "from now"),
		)
	}
}

func progressCell(b *domain.Book) string {
	if !b.ShowsProgress() {
		return "-"
	}
	return fmt.Sprintf("%d/%d %d%%", b.CurrentPage, b.TotalPages, b.ProgressPercent())
}

var catalogColumns = []column{
	{"#", 3},
	{"TITLE", 32},
	{"AUTHOR", 18},
	{"PUBLISHER", 16},
	{"ISBN", 14},
}

func printCatalog(w io.Writer, books []domain.Book) {
	printHeader(w, catalogColumns)
	for i, b := range books {
		printRow(w, catalogColumns, strconv.Itoa(i+1), b.Title, b.Author, b.Publisher, b.ISBN)
	}
}

func printBook(w io.Writer, b *domain.Book) {
	fmt.Fprintf(w, "%s  %s / %s\n", b.ID, b.Title, b.Author)
	fmt.Fprintf(w, "  status: %s", b.Status)
	if b.ShowsProgress() {
		fmt.Fprintf(w, "  progress: %s", progressCell(b))
	}
	if b.Rating != nil {
		fmt.Fprintf(w, "  rating: %s", generator.FormatRating(*b.Rating))
	}
	fmt.Fprintln(w)
}

func printReview(w io.Writer, r domain.Review) {
	fmt.Fprintf(w, "[%s] %s", r.Date, r.Type)
	if r.Rating != nil {
		fmt.Fprintf(w, "  ★ %s", generator.FormatRating(*r.Rating))
	}
	fmt.Fprintln(w)
	if len(r.Emotions) > 0 {
		labels := make([]string, len(r.Emotions))
		for i, e := range r.Emotions {
			labels[i] = string(e)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(labels, ", "))
	}
	if r.Quote != "" {
		fmt.Fprintf(w, "  \"%s\"\n", r.Quote)
	}
	for _, line := range strings.Split(r.Content, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func printDashboard(w io.Writer, d *domain.Dashboard) {
	fmt.Fprintf(w, "읽고 싶은 책 %d · 읽는 중 %d · 완독 %d\n",
		d.Counts.WantToRead, d.Counts.Reading, d.Counts.Completed)
	fmt.Fprintf(w, "읽은 페이지 %s · 완독한 책의 페이지 %s\n",
		humanize.Comma(int64(d.TotalPagesRead)), humanize.Comma(int64(d.CompletedPages)))
	if d.HasRating {
		fmt.Fprintf(w, "평균 별점 %.1f (%d권)\n", d.AverageRating, d.RatedBooks)
	}
	fmt.Fprintf(w, "올해 목표 %d권 · 달성률 %.1f%% · 남은 책 %d권\n",
		d.YearlyGoal, d.GoalCompletionRate, d.RemainingToGoal)
	fmt.Fprintf(w, "연속 독서 %d일 (최장 %d일)\n", d.CurrentStreak, d.LongestStreak)
	for _, m := range d.BooksPerMonth {
		fmt.Fprintf(w, "  %s %s %d\n", m.Month, strings.Repeat("▇", m.Count), m.Count)
	}
}
