package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/service"
)

func searchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the book catalog by title or author",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			books, err := c.app.catalog.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				c.app.notifier.Notify(service.NoResultsNotification())
				return nil
			}
			printCatalog(cmd.OutOrStdout(), books)
			return nil
		},
	}
}

func addCmd(c *cli) *cobra.Command {
	var pick, pages int

	cmd := &cobra.Command{
		Use:   "add <query>",
		Short: "Search the catalog and add a result to your shelf",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			books, err := c.app.catalog.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				c.app.notifier.Notify(service.NoResultsNotification())
				return domainerrors.NotFoundf("no catalog result for %q", query)
			}
			if pick < 1 || pick > len(books) {
				printCatalog(cmd.OutOrStdout(), books)
				return domainerrors.Validationf("--pick must be between 1 and %d", len(books))
			}

			added, err := c.app.shelf.AddFromCatalog(cmd.Context(), books[pick-1], pages)
			if err != nil {
				return err
			}
			printBook(cmd.OutOrStdout(), added)
			return nil
		},
	}

	cmd.Flags().IntVarP(&pick, "pick", "p", 1, "which search result to add (1-based)")
	cmd.Flags().IntVar(&pages, "pages", 0, "total pages (default: 300)")
	return cmd
}

func registerCmd(c *cli) *cobra.Command {
	var form service.RegistrationForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Add a book by hand when the catalog does not have it",
		Long: `Add a book by hand. Title and author are required.
Pages that are not a positive number default to 300.
Categories: ` + strings.Join(domain.Categories(), ", "),
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := c.app.registration.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			printBook(cmd.OutOrStdout(), b)
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Title, "title", "t", "", "book title (required)")
	cmd.Flags().StringVarP(&form.Author, "author", "a", "", "book author (required)")
	cmd.Flags().StringVar(&form.Publisher, "publisher", "", "publisher")
	cmd.Flags().StringVar(&form.Pubdate, "pubdate", "", "publication date")
	cmd.Flags().StringVar(&form.Description, "description", "", "short description")
	cmd.Flags().StringVar(&form.Cover, "cover", "", "cover image URL")
	cmd.Flags().StringVarP(&form.Category, "category", "c", "", "category")
	cmd.Flags().StringVar(&form.TotalPages, "pages", "", "total pages")
	return cmd
}

func listCmd(c *cli) *cobra.Command {
	var status, sortBy, query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the books on your shelf",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := service.ParseStatusFilter(status)
			if err != nil {
				return domainerrors.Validation(err.Error())
			}
			key, err := service.ParseSortKey(sortBy)
			if err != nil {
				return domainerrors.Validation(err.Error())
			}

			books, err := c.app.shelf.List(cmd.Context())
			if err != nil {
				return err
			}
			filtered := service.FilterAndSort(books, service.FilterOptions{
				SearchTerm: query,
				Status:     st,
				Sort:       key,
			})
			printShelf(cmd.OutOrStdout(), filtered, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (all, want-to-read, reading, completed)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by recent, progress, rating, or completedDate")
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title")
	return cmd
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.app.shelf.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBook(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func startCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "start <book-id>",
		Short: "Start reading a book from your wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.app.shelf.StartReading(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBook(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func progressCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <book-id> <page>",
		Short: "Record the page you have read up to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return domainerrors.Validationf("page must be a whole number, got %q", args[1])
			}
			b, err := c.app.shelf.UpdateProgress(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			printBook(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func completeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <book-id>",
		Short: "Mark a book as finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.app.shelf.MarkCompleted(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBook(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func historyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history <book-id>",
		Short: "Show the reading history of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.shelf.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "아직 기록이 없어요.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  p.%-5d %3d%%\n", e.Date, e.Page, e.Progress)
			}
			return nil
		},
	}
}
