package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/sse"
	"github.com/listenupapp/readinglog/internal/store"
)

type recordingNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.items))
	for i, n := range r.items {
		out[i] = n.Title
	}
	return out
}

func (r *recordingNotifier) last() domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return domain.Notification{}
	}
	return r.items[len(r.items)-1]
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := event.(sse.Event); ok {
		r.events = append(r.events, e)
	}
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    *store.Store
	notifier *recordingNotifier
	events   *recordingEmitter
	clock    *clock
	collab   Collaborators
	shelf    *ShelfService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.New(store.NewMemoryBackend(), nil)
	t.Cleanup(func() { _ = st.Close() })

	env := &testEnv{
		store:    st,
		notifier: &recordingNotifier{},
		events:   &recordingEmitter{},
		clock:    &clock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	env.collab = Collaborators{
		Notifier: env.notifier,
		Events:   env.events,
		Clock:    env.clock.Now,
	}
	env.shelf = NewShelfService(st, env.collab)
	return env
}

func (e *testEnv) addBook(t *testing.T, title string, totalPages int) *domain.Book {
	t.Helper()
	b, err := e.shelf.AddBook(context.Background(), BookDraft{
		Title:      title,
		Author:     "작가",
		TotalPages: totalPages,
	})
	require.NoError(t, err)
	return b
}
