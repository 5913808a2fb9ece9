package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglog/internal/catalog"
	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/metrics"
	"github.com/listenupapp/readinglog/internal/ratelimit"
	"github.com/listenupapp/readinglog/internal/search"
	"github.com/listenupapp/readinglog/internal/service"
	"github.com/listenupapp/readinglog/internal/sse"
	"github.com/listenupapp/readinglog/internal/store"
)

// testEnvelope mirrors Envelope with a typed payload.
type testEnvelope[T any] struct {
	V       int             `json:"v"`
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, n.Title)
}

func (r *recordingNotifier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.titles) == 0 {
		return ""
	}
	return r.titles[len(r.titles)-1]
}

type testServer struct {
	*Server
	api      humatest.TestAPI
	notifier *recordingNotifier
	index    *search.Index
}

type setupOption func(*Options)

func withLimiter(l *ratelimit.KeyedRateLimiter) setupOption {
	return func(o *Options) { o.Limiter = l }
}

func setupTestServer(t *testing.T, opts ...setupOption) *testServer {
	t.Helper()

	st := store.New(store.NewMemoryBackend(), nil)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.New(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	m := metrics.NewMetrics()
	notifier := &recordingNotifier{}
	sseManager := sse.NewManager(nil, m)

	collab := service.Collaborators{
		Notifier: notifier,
		Events:   sseManager,
		Indexer:  idx,
		Metrics:  m,
		Clock: func() time.Time {
			return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
		},
	}
	shelf := service.NewShelfService(st, collab)
	services := &Services{
		Shelf:        shelf,
		Review:       service.NewReviewService(st, generator.NewTemplateGenerator(0, nil), collab),
		Stats:        service.NewStatsService(st, 0, collab),
		Registration: service.NewRegistrationService(shelf, nil, collab),
		Catalog:      catalog.NewSearcher(catalog.NewMemoryCatalog(), nil, m),
		Search:       idx,
		Notifier:     notifier,
	}

	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	s := NewServer(st, services, sseManager, m, nil, o)
	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.API()),
		notifier: notifier,
		index:    idx,
	}
}

func (ts *testServer) addBook(t *testing.T, title string, pages int) BookResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/shelf", map[string]any{
		"title":      title,
		"author":     "작가",
		"totalPages": pages,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[BookResponse](t, resp.Body.Bytes()).Data
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, EnvelopeVersion, env.V)
	assert.True(t, env.Success)
	assert.Equal(t, statusHealthy, env.Data.Status)
	assert.Equal(t, statusHealthy, env.Data.Components["storage"].Status)
	assert.Equal(t, "no connected clients", env.Data.Components["sse"].Message)
}

func TestCatalogSearch(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/catalog/search?q=" + url.QueryEscape("미드나이트"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[CatalogResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Books, 1)
	assert.Equal(t, "미드나이트 라이브러리", env.Data.Books[0].Title)
	assert.Empty(t, ts.notifier.last())
}

func TestCatalogSearch_NoResults(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/catalog/search?q=zzz")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[CatalogResponse](t, resp.Body.Bytes())
	assert.Empty(t, env.Data.Books)
	assert.NotNil(t, env.Data.Books)
	assert.Equal(t, service.TitleNoResults, ts.notifier.last())
}

func TestShelf_AddAndList(t *testing.T) {
	ts := setupTestServer(t)

	added := ts.addBook(t, "미드나이트 라이브러리", 300)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, domain.StatusWantToRead, added.Status)
	assert.False(t, added.ShowsProgress)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, added.Spine.Color)
	assert.Equal(t, service.TitleBookAdded, ts.notifier.last())

	ts.addBook(t, "사피엔스", 600)

	resp := ts.api.Get("/api/v1/shelf?q=" + url.QueryEscape("라이브러리"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[ShelfResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Books, 1)
	assert.Equal(t, added.ID, env.Data.Books[0].ID)
	assert.Equal(t, 2, env.Data.Counts.WantToRead, "counts cover the unfiltered shelf")
}

func TestShelf_InvalidSort(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/shelf?sort=title")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestProgress_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 200)

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/progress", map[string]any{"page": 50})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, domain.StatusReading, got.Status)
	assert.Equal(t, 25, got.Progress)

	resp = ts.api.Post("/api/v1/books/"+book.ID+"/progress", map[string]any{"page": 200})
	require.Equal(t, http.StatusOK, resp.Code)
	got = decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedDate)
	assert.Equal(t, service.TitleCompleted, ts.notifier.last())

	resp = ts.api.Get("/api/v1/books/" + book.ID + "/history")
	require.Equal(t, http.StatusOK, resp.Code)
	history := decode[HistoryResponse](t, resp.Body.Bytes()).Data.History
	require.Len(t, history, 2)
	assert.Equal(t, 100, history[1].Progress)

	resp = ts.api.Get("/api/v1/books/" + book.ID + "/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	stats := decode[service.BookProgress](t, resp.Body.Bytes()).Data
	assert.Equal(t, 100, stats.Stats.ProgressPercent)
	assert.Len(t, stats.Series, 2)
}

func TestProgress_OutOfRange(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 200)

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/progress", map[string]any{"page": 201})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, "OUT_OF_RANGE", env.Code)
	assert.Equal(t, service.TitleInvalidPage, ts.notifier.last())

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, decode[BookResponse](t, resp.Body.Bytes()).Data.CurrentPage)
}

func TestStartAndComplete(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 120)

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/start")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, domain.StatusReading, decode[BookResponse](t, resp.Body.Bytes()).Data.Status)

	resp = ts.api.Post("/api/v1/books/"+book.ID+"/complete")
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 120, got.CurrentPage)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 120)

	resp := ts.api.Patch("/api/v1/books/"+book.ID, map[string]any{"rating": 4.5, "category": "소설"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decode[BookResponse](t, resp.Body.Bytes()).Data
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.5, *got.Rating, 0)
	assert.Equal(t, "소설", got.Category)

	resp = ts.api.Patch("/api/v1/books/"+book.ID, map[string]any{"rating": 4.3})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUnknownBook(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{
		"/api/v1/books/book-missing",
		"/api/v1/books/book-missing/reviews",
		"/api/v1/books/book-missing/stats",
	} {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusNotFound, resp.Code, path)
		assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code, path)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, 1, env.V)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/register", map[string]any{"author": "저자"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)
	assert.Equal(t, service.TitleMissingFields, ts.notifier.last())

	resp = ts.api.Post("/api/v1/register", map[string]any{
		"title":      "직접 쓴 책",
		"author":     "저자",
		"totalPages": "abc",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	got := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, domain.DefaultTotalPages, got.TotalPages)
	assert.Equal(t, domain.DefaultCategory, got.Category)

	resp = ts.api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, decode[CategoriesResponse](t, resp.Body.Bytes()).Data.Categories, "소설")
}

func TestReviewFlow(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "미드나이트 라이브러리", 300)
	base := "/api/v1/books/" + book.ID

	resp := ts.api.Post(base+"/reviews/generate", map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, service.TitleMissingContent, ts.notifier.last())

	resp = ts.api.Post(base+"/reviews/generate", map[string]any{
		"thoughts": "후회에 대해 생각했다.",
		"emotions": []string{string(domain.EmotionMoved)},
		"rating":   4.5,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	text := decode[GeneratedResponse](t, resp.Body.Bytes()).Data.Text
	assert.True(t, strings.HasPrefix(text, "이 책을 읽으면서 "))

	resp = ts.api.Get(base + "/draft")
	require.Equal(t, http.StatusOK, resp.Code)
	draft := decode[DraftResponse](t, resp.Body.Bytes()).Data.Draft
	require.NotNil(t, draft)
	assert.Equal(t, text, draft.Generated)

	resp = ts.api.Post(base+"/reviews", map[string]any{
		"thoughts":  "후회에 대해 생각했다.",
		"emotions":  []string{string(domain.EmotionMoved)},
		"rating":    4.5,
		"generated": text,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	review := decode[domain.Review](t, resp.Body.Bytes()).Data
	assert.Equal(t, text, review.Content)
	assert.Equal(t, domain.ReviewComplete, review.Type)

	resp = ts.api.Get(base + "/draft")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, decode[DraftResponse](t, resp.Body.Bytes()).Data.Draft)

	resp = ts.api.Get("/api/v1/reviews/summary")
	require.Equal(t, http.StatusOK, resp.Code)
	summary := decode[domain.ReviewSummary](t, resp.Body.Bytes()).Data
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, domain.VibeWarm, summary.Vibe)

	resp = ts.api.Get("/api/v1/library/search?q=" + url.QueryEscape("라이브러리") + "&type=review")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	found := decode[search.Result](t, resp.Body.Bytes()).Data
	require.Len(t, found.Hits, 1)
	assert.Equal(t, review.ID, found.Hits[0].ID)
}

func TestDraft_SaveAndLoad(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 100)

	resp := ts.api.Put("/api/v1/books/"+book.ID+"/draft", map[string]any{
		"thoughts": "쓰다 만 생각",
		"rating":   3,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	draft := decode[DraftResponse](t, resp.Body.Bytes()).Data.Draft
	require.NotNil(t, draft)
	assert.Equal(t, "쓰다 만 생각", draft.Thoughts)
	require.NotNil(t, draft.Rating)
	assert.InDelta(t, 3.0, *draft.Rating, 0)

	resp = ts.api.Put("/api/v1/books/"+book.ID+"/draft", map[string]any{
		"emotions": []string{"🙂 괜찮았어요"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSaveReview_WithoutRating(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 100)
	ts.api.Post("/api/v1/books/" + book.ID + "/complete")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews", map[string]any{"thoughts": "별점은 보류"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Nil(t, decode[domain.Review](t, resp.Body.Bytes()).Data.Rating)

	resp = ts.api.Get("/api/v1/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	d := decode[domain.Dashboard](t, resp.Body.Bytes()).Data
	assert.Zero(t, d.RatedBooks)
	assert.False(t, d.HasRating)
}

func TestEmotions(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/emotions")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.Emotions(), decode[EmotionsResponse](t, resp.Body.Bytes()).Data.Emotions)
}

func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, "책", 100)
	ts.api.Post("/api/v1/books/"+book.ID+"/complete")

	resp := ts.api.Get("/api/v1/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	d := decode[domain.Dashboard](t, resp.Body.Bytes()).Data
	assert.Equal(t, 1, d.Counts.Completed)
	assert.Equal(t, service.DefaultYearlyGoal, d.YearlyGoal)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.api.Get("/api/v1/catalog/search?q=zzz")

	resp := ts.api.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "readinglog_catalog_searches_total")
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, withLimiter(limiter))

	resp := ts.api.Get("/api/v1/catalog/search?q=zzz")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/catalog/search?q=zzz")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[any](t, resp.Body.Bytes()).Code)

	// Unthrottled routes are unaffected.
	resp = ts.api.Get("/api/v1/shelf")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestEvents_CanceledRequest(t *testing.T) {
	ts := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/api/v1/events", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Zero(t, ts.sseManager.ClientCount(), "a request that is already gone never registers")
}
