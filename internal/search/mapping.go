package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping shared by book and review documents.
//
// Text fields use the CJK analyzer: Hangul is split into bigrams, Latin text
// into lowercased words. Discriminators and filters are keywords; progress,
// rating and timestamps are numeric for sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = cjk.AnalyzerName

	doc := bleve.NewDocumentMapping()

	text := func(field string, store, vectors bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = cjk.AnalyzerName
		fm.Store = store
		fm.IncludeTermVectors = vectors
		doc.AddFieldMappingsAt(field, fm)
	}
	text("title", true, true)
	text("author", true, true)
	text("publisher", true, false)
	text("description", false, false)
	text("content", true, true)
	text("quote", true, true)

	kw := func(field string, store bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		doc.AddFieldMappingsAt(field, fm)
	}
	kw("id", false)
	kw("type", true)
	kw("book_id", true)
	kw("status", true)
	kw("category", true)
	kw("emotions", true)
	kw("review_type", true)

	num := func(field string) {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		doc.AddFieldMappingsAt(field, fm)
	}
	num("progress")
	num("rating")
	num("updated_at")

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
