package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func inspectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show what the local database and search index hold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			usage, err := c.app.store.Inventory(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "=== Database Inspection ===")
			total := 0
			for _, u := range usage {
				fmt.Fprintf(out, "%-10s %5d keys %10s\n", u.Name, u.Keys, humanize.Bytes(uint64(u.Bytes)))
				total += u.Bytes
			}
			fmt.Fprintf(out, "%-10s %16s\n", "total", humanize.Bytes(uint64(total)))

			books, err := c.app.shelf.List(ctx)
			if err != nil {
				return err
			}
			withReview := 0
			for _, b := range books {
				if b.HasReview {
					withReview++
				}
			}
			fmt.Fprintf(out, "\nbooks: %d (%d reviewed)\n", len(books), withReview)

			if c.app.index == nil {
				fmt.Fprintln(out, "search index: disabled")
				return nil
			}
			docs, err := c.app.index.DocumentCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "search index: %d documents\n", docs)
			return nil
		},
	}
}
