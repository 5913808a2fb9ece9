// Package main is readlog, the terminal front end of the reading log.
//
// Usage:
//
//	readlog search 미드나이트
//	readlog add 미드나이트 --pick 1
//	readlog progress <book-id> 120
//	readlog review save <book-id> --thoughts "..." --emotion moved --rating 4.5
//	readlog stats
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readinglog/internal/config"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
)

// cli carries state shared by every command of one invocation.
type cli struct {
	app    *app
	flags  *config.Flags
	out    io.Writer
	errOut io.Writer

	// ownsApp is false when a test injected app.
	ownsApp bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, errOut: os.Stderr}
	err := newRootCmd(c).ExecuteContext(ctx)
	// Close even when the command failed so the database lock is released.
	if cerr := c.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps domain error codes to distinct exit statuses.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domainerrors.ErrValidation), errors.Is(err, domainerrors.ErrOutOfRange):
		return 2
	case errors.Is(err, domainerrors.ErrNotFound):
		return 3
	case errors.Is(err, domainerrors.ErrStorage):
		return 4
	case errors.Is(err, domainerrors.ErrCanceled), errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "readlog",
		Short: "A personal reading log: shelf, progress, reviews, and stats",
		Long: `readlog keeps a personal bookshelf in a local database.
Search the catalog, track reading progress, write reviews, and see your stats.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open()
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	// Configuration flags are shared with the server.
	fs := flag.NewFlagSet("readlog", flag.ContinueOnError)
	c.flags = config.BindFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)

	root.AddCommand(
		searchCmd(c),
		addCmd(c),
		registerCmd(c),
		listCmd(c),
		showCmd(c),
		startCmd(c),
		progressCmd(c),
		completeCmd(c),
		reviewCmd(c),
		statsCmd(c),
		historyCmd(c),
		findCmd(c),
		seedCmd(c),
		inspectCmd(c),
	)

	return root
}

// open loads configuration and opens the app unless one was injected.
func (c *cli) open() error {
	if c.app != nil {
		return nil
	}

	// The CLI is quiet unless asked otherwise.
	if c.flags.LogLevel == "" && os.Getenv("LOG_LEVEL") == "" {
		c.flags.LogLevel = "warn"
	}
	cfg, err := config.Load(*c.flags)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Writer:      c.errOut,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	a, err := openApp(cfg, c.errOut, log)
	if err != nil {
		return err
	}
	c.app = a
	c.ownsApp = true
	return nil
}

func (c *cli) close() error {
	if c.app == nil || !c.ownsApp {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
