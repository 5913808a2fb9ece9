package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/listenupapp/readinglog/internal/search"
)

func statsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [book-id]",
		Short: "Show the shelf dashboard, or one book's progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				d, err := c.app.stats.Dashboard(cmd.Context())
				if err != nil {
					return err
				}
				printDashboard(out, d)
				return nil
			}

			p, err := c.app.stats.BookStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s := p.Stats
			fmt.Fprintf(out, "진행률 %d%% · 남은 페이지 %d · 주간 평균 %d쪽\n",
				s.ProgressPercent, s.RemainingPages, s.WeeklyAverage)
			if s.EstimatedCompletionWeeks != nil {
				fmt.Fprintf(out, "예상 완독까지 %d주\n", *s.EstimatedCompletionWeeks)
			}
			for _, pt := range p.Series {
				fmt.Fprintf(out, "  %s %-20s %3d%%\n", pt.Date, strings.Repeat("█", pt.Progress/5), pt.Progress)
			}
			return nil
		},
	}
}

func findCmd(c *cli) *cobra.Command {
	var docType, status, category, emotion, sortBy string
	var limit int

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Full-text search over your shelf and reviews",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.app.ensureIndexed(ctx); err != nil {
				return err
			}

			params := search.DefaultParams()
			params.Query = strings.Join(args, " ")
			params.Status = status
			params.Category = category
			if emotion != "" {
				params.Emotion = string(parseEmotion(emotion))
			}
			params.Limit = limit
			params.IncludeFacets = false
			params.Highlight = false
			if sortBy != "" {
				params.SortBy = sortBy
			}
			if docType != "" {
				params.Types = []search.DocType{search.DocType(docType)}
			}

			result, err := c.app.index.Search(ctx, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, hit := range result.Hits {
				switch hit.Type {
				case search.DocTypeReview:
					fmt.Fprintf(out, "review  %s  %s [%s]\n", hit.BookID, hit.Title, hit.ReviewType)
					if hit.Content != "" {
						fmt.Fprintf(out, "        %s\n", cell(hit.Content, 60))
					}
				default:
					fmt.Fprintf(out, "book    %s  %s / %s (%s)\n", hit.ID, hit.Title, hit.Author, hit.Status)
				}
			}
			fmt.Fprintf(out, "%s results in %dms\n", humanize.Comma(int64(result.Total)), result.TookMs)
			return nil
		},
	}

	cmd.Flags().StringVar(&docType, "type", "", "book or review")
	cmd.Flags().StringVarP(&status, "status", "s", "", "filter books by status")
	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category")
	cmd.Flags().StringVarP(&emotion, "emotion", "e", "", "filter reviews by emotion")
	cmd.Flags().StringVar(&sortBy, "sort", "", "relevance, recent, rating, or progress")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results")
	return cmd
}
