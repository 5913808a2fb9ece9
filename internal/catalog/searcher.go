package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
)

var errSuperseded = errors.New("superseded by a newer search")

// Searcher runs at most one search at a time. Starting a search cancels the
// one in flight, whose caller receives a CANCELED error instead of stale results.
type Searcher struct {
	provider Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	seq    uint64
}

// NewSearcher wraps provider with cancel-and-replace semantics.
func NewSearcher(provider Provider, log *slog.Logger, m *metrics.Metrics) *Searcher {
	return &Searcher{
		provider: provider,
		logger:   logger.OrDiscard(log),
		metrics:  m,
	}
}

// Search queries the provider. A blank query returns immediately and leaves
// any in-flight search running.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	seq := s.begin(cancel)
	defer s.end(seq, cancel)

	start := time.Now()
	books, err := s.provider.Search(ctx, query)
	elapsed := time.Since(start)

	if errors.Is(context.Cause(ctx), errSuperseded) {
		s.metrics.ObserveSearch(metrics.OutcomeSuperseded, elapsed)
		s.logger.Debug("catalog search superseded", "query", query)
		return nil, domainerrors.Wrap(errSuperseded, domainerrors.CodeCanceled, "search canceled")
	}

	switch {
	case errors.Is(err, domainerrors.ErrCanceled):
		s.metrics.ObserveSearch(metrics.OutcomeCanceled, elapsed)
		return nil, err
	case err != nil:
		if cerr := domainerrors.FromContext(err); cerr != nil {
			s.metrics.ObserveSearch(metrics.OutcomeCanceled, elapsed)
			return nil, cerr
		}
		s.metrics.ObserveSearch(metrics.OutcomeError, elapsed)
		s.logger.Warn("catalog search failed", "query", query, "error", err)
		return nil, err
	case len(books) == 0:
		s.metrics.ObserveSearch(metrics.OutcomeEmpty, elapsed)
	default:
		s.metrics.ObserveSearch(metrics.OutcomeOK, elapsed)
	}

	s.logger.Debug("catalog search finished", "query", query, "count", len(books), "duration", elapsed)
	return books, nil
}

// Cancel abandons the in-flight search, if any.
func (s *Searcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(errSuperseded)
		s.cancel = nil
	}
}

func (s *Searcher) begin(cancel context.CancelCauseFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(errSuperseded)
	}
	s.cancel = cancel
	s.seq++
	return s.seq
}

func (s *Searcher) end(seq uint64, cancel context.CancelCauseFunc) {
	s.mu.Lock()
	if s.seq == seq {
		s.cancel = nil
	}
	s.mu.Unlock()
	cancel(nil)
}
