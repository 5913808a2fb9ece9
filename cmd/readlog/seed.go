package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readinglog/internal/catalog"
	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/service"
)

// seedBooks extend the built-in catalog so the dashboard has something to chart.
var seedBooks = []service.BookDraft{
	{Title: "아몬드", Author: "손원평", Publisher: "창비", Category: "소설", TotalPages: 264},
	{Title: "불편한 편의점", Author: "김호연", Publisher: "나무옆의자", Category: "소설", TotalPages: 268},
	{Title: "사피엔스", Author: "유발 하라리", Publisher: "김영사", Category: "역사", TotalPages: 636},
	{Title: "역행자", Author: "자청", Publisher: "웅진지식하우스", Category: "자기계발", TotalPages: 296},
}

var seedThoughts = []string{
	"마지막 장을 덮고 한참 동안 생각에 잠겼다.",
	"등장인물들이 오래 기억에 남을 것 같다.",
	"천천히 다시 읽고 싶은 문장이 많았다.",
	"예상하지 못한 전개에 밤새 읽었다.",
}

// seedClock is a settable clock shared by the seeding services.
type seedClock struct{ now time.Time }

func (c *seedClock) Now() time.Time { return c.now }

func (c *seedClock) advance(d time.Duration, limit time.Time) {
	c.now = c.now.Add(d)
	if c.now.After(limit) {
		c.now = limit
	}
}

func seedCmd(c *cli) *cobra.Command {
	var days int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the shelf with sample books, progress, and reviews",
		Long: `Fill the shelf with sample books and a realistic reading history
spread over the last --days days, so the dashboard and charts have data.
The same --seed always produces the same shelf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			res, err := seedShelf(cmd.Context(), c.app, seed, days, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books: %d reading, %d completed, %d reviews, %d progress entries\n",
				res.books, res.reading, res.completed, res.reviews, res.entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 60, "how many days of history to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

type seedResult struct {
	books, reading, completed, reviews, entries int
}

// seedShelf writes through the regular services so history, index, and
// review rules apply exactly as they do for hand-entered data.
func seedShelf(ctx context.Context, a *app, seed uint64, days int, now time.Time) (seedResult, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := now.AddDate(0, 0, -days)
	clock := &seedClock{now: start}

	collab := service.Collaborators{
		Indexer: service.NoopSearchIndexer{},
		Logger:  a.log.Logger,
		Clock:   clock.Now,
	}
	if a.index != nil {
		collab.Indexer = a.index
	}
	shelf := service.NewShelfService(a.store, collab)
	reviews := service.NewReviewService(a.store, generator.NewTemplateGenerator(0, nil), collab)

	drafts := make([]service.BookDraft, 0, len(seedBooks)+3)
	for _, b := range catalog.DefaultBooks() {
		drafts = append(drafts, service.BookDraft{
			ISBN:        b.ISBN,
			Title:       b.Title,
			Author:      b.Author,
			Publisher:   b.Publisher,
			Pubdate:     b.Pubdate,
			Description: b.Description,
			Cover:       b.Cover,
			Category:    "소설",
			TotalPages:  250 + rng.IntN(200),
		})
	}
	drafts = append(drafts, seedBooks...)

	var res seedResult
	for _, d := range drafts {
		clock.now = start.Add(time.Duration(rng.IntN(days/2+1)) * 24 * time.Hour)

		book, err := shelf.AddBook(ctx, d)
		if err != nil {
			return res, err
		}
		res.books++

		// A quarter of the shelf stays on the wishlist.
		if rng.IntN(4) == 0 {
			continue
		}

		finish := rng.IntN(3) > 0
		step := max(1, book.TotalPages/(5+rng.IntN(8)))
		page := 0
		for page < book.TotalPages {
			clock.advance(time.Duration(1+rng.IntN(3))*24*time.Hour, now)
			page = min(book.TotalPages, page+step+rng.IntN(step/2+1))
			if !finish && page >= book.TotalPages*3/4 {
				break
			}
			if book, err = shelf.UpdateProgress(ctx, book.ID, page); err != nil {
				return res, err
			}
			res.entries++
			if clock.now.Equal(now) {
				break
			}
		}

		if !book.IsCompleted() {
			res.reading++
			continue
		}
		res.completed++

		rating := 3 + float64(rng.IntN(5))*0.5
		in := domain.ReviewInput{
			Thoughts: seedThoughts[rng.IntN(len(seedThoughts))],
			Emotions: pickEmotions(rng),
			Rating:   &rating,
		}
		if _, err := reviews.SaveReview(ctx, book.ID, service.ReviewSubmission{
			ReviewInput: in,
			Generated:   generator.Compose(in),
		}); err != nil {
			return res, err
		}
		res.reviews++
	}

	return res, nil
}

func pickEmotions(rng *rand.Rand) []domain.Emotion {
	all := domain.Emotions()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:1+rng.IntN(2)]
}
