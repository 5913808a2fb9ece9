package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
	"github.com/listenupapp/readinglog/internal/metrics"
	"github.com/listenupapp/readinglog/internal/ratelimit"
)

// DefaultGoogleBooksURL is the public volumes endpoint.
const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"

const (
	maxResults       = 20
	defaultCacheSize = 128
)

// Sentinel errors for Google Books requests.
var (
	ErrRateLimited = errors.New("googlebooks: rate limited by server")
	ErrBadRequest  = errors.New("googlebooks: bad request")
	ErrServer      = errors.New("googlebooks: server error")
)

// GoogleBooksConfig configures a GoogleBooks client.
type GoogleBooksConfig struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	BaseURL    string
	APIKey     string
	CacheSize  int
}

// GoogleBooks searches the Google Books volumes API.
type GoogleBooks struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.KeyedRateLimiter
	cache       *lru.Cache[string, []domain.Book]
	logger      *slog.Logger
	metrics     *metrics.Metrics
	baseURL     string
	apiKey      string
}

// NewGoogleBooks creates a Google Books provider. The public API allows
// roughly one request per second per key; bursts of 5 are tolerated.
func NewGoogleBooks(cfg GoogleBooksConfig) (*GoogleBooks, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGoogleBooksURL
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid catalog URL %q: must be an absolute http(s) URL", cfg.BaseURL)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	cache, err := lru.New[string, []domain.Book](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}

	return &GoogleBooks{
		httpClient:  cfg.HTTPClient,
		rateLimiter: ratelimit.New(1, 5),
		cache:       cache,
		logger:      logger.OrDiscard(cfg.Logger),
		metrics:     cfg.Metrics,
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
	}, nil
}

// wait blocks until the quota of the configured key allows a request.
func (g *GoogleBooks) wait(ctx context.Context) error {
	key := g.apiKey
	if key == "" {
		key = "anonymous"
	}
	return g.rateLimiter.Wait(ctx, key)
}

// Search implements Provider. Results are cached per query.
func (g *GoogleBooks) Search(ctx context.Context, query string) ([]domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if cached, ok := g.cache.Get(query); ok {
		g.metrics.IncCacheHit()
		g.logger.Debug("catalog cache hit", "query", query, "count", len(cached))
		return cloneBooks(cached), nil
	}

	if err := g.wait(ctx); err != nil {
		if cerr := domainerrors.FromContext(ctx.Err()); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}
	searchURL := g.baseURL + "?" + params.Encode()

	g.logger.Debug("searching Google Books", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if cerr := domainerrors.FromContext(ctx.Err()); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var vr volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	books := make([]domain.Book, 0, len(vr.Items))
	for i := range vr.Items {
		if b, ok := vr.Items[i].toBook(); ok {
			books = append(books, b)
		}
	}

	g.logger.Debug("Google Books search results", "query", query, "count", len(books))
	g.cache.Add(query, books)
	return cloneBooks(books), nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrServer, code)
	default:
		return fmt.Errorf("%w: status %d", ErrBadRequest, code)
	}
}

func cloneBooks(in []domain.Book) []domain.Book {
	if in == nil {
		return nil
	}
	out := make([]domain.Book, len(in))
	copy(out, in)
	return out
}

type volumesResponse struct {
	Items      []volume `json:"items"`
	TotalItems int      `json:"totalItems"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	Categories          []string `json:"categories"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		SmallThumbnail string `json:"smallThumbnail"`
		Thumbnail      string `json:"thumbnail"`
	} `json:"imageLinks"`
	PageCount int `json:"pageCount"`
}

// toBook converts a volume. Volumes without a title are skipped.
func (v *volume) toBook() (domain.Book, bool) {
	info := &v.VolumeInfo
	if strings.TrimSpace(info.Title) == "" {
		return domain.Book{}, false
	}

	b := domain.Book{
		ISBN:        info.isbn(),
		Title:       info.Title,
		Author:      strings.Join(info.Authors, ", "),
		Publisher:   info.Publisher,
		Pubdate:     info.PublishedDate,
		Description: htmlToMarkdown(info.Description),
		Cover:       httpsURL(info.ImageLinks.Thumbnail),
		TotalPages:  max(0, info.PageCount),
	}
	if b.Cover == "" {
		b.Cover = httpsURL(info.ImageLinks.SmallThumbnail)
	}
	if len(info.Categories) > 0 {
		b.Category = info.Categories[0]
	}
	return b, true
}

// isbn prefers ISBN_13 over ISBN_10.
func (info *volumeInfo) isbn() string {
	var isbn10 string
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}

func httpsURL(s string) string {
	if rest, ok := strings.CutPrefix(s, "http://"); ok {
		return "https://" + rest
	}
	return s
}

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// htmlToMarkdown converts HTML descriptions to Markdown.
// Plain text is returned unchanged.
func htmlToMarkdown(s string) string {
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
