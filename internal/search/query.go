package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search.
type Params struct {
	Query string
	// Types restricts results to books or reviews. Empty means both.
	Types    []DocType
	Status   string
	Category string
	Emotion  string

	Limit  int
	Offset int

	// SortBy is "relevance" (default), "recent", "rating" or "progress".
	SortBy string

	IncludeFacets bool
	Highlight     bool
}

// DefaultParams returns the parameters used when the caller sets nothing.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		SortBy:        "relevance",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result is a page of hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets"`
}

// Hit is a single matching book or review.
type Hit struct {
	Rating     *float64          `json:"rating,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	BookID     string            `json:"bookId"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Status     string            `json:"status,omitempty"`
	Content    string            `json:"content,omitempty"`
	ReviewType string            `json:"reviewType,omitempty"`
	Score      float64           `json:"score"`
	Progress   int               `json:"progress,omitempty"`
}

// Facets are value counts over the whole match set.
type Facets struct {
	Types      []FacetCount `json:"types,omitempty"`
	Statuses   []FacetCount `json:"statuses,omitempty"`
	Categories []FacetCount `json:"categories,omitempty"`
	Emotions   []FacetCount `json:"emotions,omitempty"`
}

// FacetCount is a facet value and how many hits carry it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

var facetFields = []string{"type", "status", "category", "emotions"}

var storedFields = []string{
	"type", "book_id", "title", "author", "status",
	"content", "review_type", "rating", "progress",
}

// Search runs a query against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, ErrClosed
	}

	if params.Limit <= 0 {
		params.Limit = DefaultParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, max(0, params.Offset), false)
	addSorting(req, params.SortBy)

	if params.IncludeFacets {
		for _, field := range facetFields {
			req.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		for _, f := range []string{"title", "author", "content", "quote"} {
			req.Highlight.AddField(f)
		}
	}
	req.Fields = storedFields

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}

		str := func(field string) string {
			v, _ := h.Fields[field].(string)
			return v
		}
		hit.Type = DocType(str("type"))
		hit.BookID = str("book_id")
		hit.Title = str("title")
		hit.Author = str("author")
		hit.Status = str("status")
		hit.Content = str("content")
		hit.ReviewType = str("review_type")
		if p, ok := h.Fields["progress"].(float64); ok {
			hit.Progress = int(p)
		}
		if r, ok := h.Fields["rating"].(float64); ok {
			hit.Rating = &r
		}

		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, hit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}

	s.logger.Debug("library search", "query", params.Query, "count", len(result.Hits), "total", result.Total)
	return result, nil
}

// buildQuery ANDs the text query with the keyword filters.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		var text []query.Query

		title := bleve.NewMatchQuery(q)
		title.SetField("title")
		title.SetBoost(3.0)
		text = append(text, title)

		author := bleve.NewMatchQuery(q)
		author.SetField("author")
		author.SetBoost(2.0)
		text = append(text, author)

		for _, field := range []string{"content", "quote", "description", "publisher"} {
			m := bleve.NewMatchQuery(q)
			m.SetField(field)
			text = append(text, m)
		}

		// Typo tolerance only makes sense for words, not Hangul bigrams.
		if isLatin(q) {
			fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("title")
			fuzzy.SetBoost(0.8)
			text = append(text, fuzzy)

			if utf8.RuneCountInString(q) >= 2 {
				prefix := bleve.NewPrefixQuery(strings.ToLower(q))
				prefix.SetField("title")
				prefix.SetBoost(0.5)
				text = append(text, prefix)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		types := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			types[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(types...))
	}

	for field, value := range map[string]string{
		"status":   params.Status,
		"category": params.Category,
		"emotions": params.Emotion,
	} {
		if value == "" {
			continue
		}
		tq := bleve.NewTermQuery(value)
		tq.SetField(field)
		queries = append(queries, tq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func isLatin(s string) bool {
	for _, r := range s {
		if r >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func addSorting(req *bleve.SearchRequest, sortBy string) {
	switch sortBy {
	case "recent":
		req.SortBy([]string{"-updated_at", "-_score"})
	case "rating":
		req.SortBy([]string{"-rating", "-_score"})
	case "progress":
		req.SortBy([]string{"-progress", "-_score"})
	default:
		req.SortBy([]string{"-_score"})
	}
}

func extractFacets(res *bleve.SearchResult) Facets {
	collect := func(field string) []FacetCount {
		f, ok := res.Facets[field]
		if !ok || f.Terms == nil {
			return nil
		}
		var out []FacetCount
		for _, term := range f.Terms.Terms() {
			out = append(out, FacetCount{Value: term.Term, Count: term.Count})
		}
		return out
	}

	return Facets{
		Types:      collect("type"),
		Statuses:   collect("status"),
		Categories: collect("category"),
		Emotions:   collect("emotions"),
	}
}
