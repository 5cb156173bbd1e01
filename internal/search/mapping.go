package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	fieldTitle    = "title"
	fieldKeywords = "keywords"
)

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(fieldTitle, titleFieldMapping)

	// Rating keywords are plain numbers and handle_number tokens.
	keywordsFieldMapping := bleve.NewTextFieldMapping()
	keywordsFieldMapping.Analyzer = standard.Name
	keywordsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldKeywords, keywordsFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
