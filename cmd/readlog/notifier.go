package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/listenupapp/readinglog/internal/domain"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
	ansiDim   = "\033[2m"
)

// terminalNotifier prints notifications as one- or two-line toasts.
type terminalNotifier struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func newTerminalNotifier(w io.Writer) *terminalNotifier {
	return &terminalNotifier{w: w, color: colorEnabled(w)}
}

// colorEnabled is true for terminals unless NO_COLOR is set.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Notify implements service.Notifier.
func (n *terminalNotifier) Notify(note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	marker, color := "•", ansiCyan
	switch note.Variant {
	case domain.VariantSuccess:
		marker, color = "✓", ansiGreen
	case domain.VariantDestructive:
		marker, color = "✗", ansiRed
	}

	if n.color {
		fmt.Fprintf(n.w, "%s%s %s%s\n", color, marker, note.Title, ansiReset)
		if note.Description != "" {
			fmt.Fprintf(n.w, "  %s%s%s\n", ansiDim, note.Description, ansiReset)
		}
		return
	}

	fmt.Fprintf(n.w, "%s %s\n", marker, note.Title)
	if note.Description != "" {
		fmt.Fprintf(n.w, "  %s\n", note.Description)
	}
}
