package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Field names of indexed profile documents.
const (
	fieldHandle      = "handle"
	fieldDisplayName = "display_name"
	fieldDisplaySort = "display_sort"
	fieldDescription = "description"
)

// buildIndexMapping maps profile documents: the handle and the sort key are
// single keyword terms, the display name and description are English text.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	handle := bleve.NewTextFieldMapping()
	handle.Analyzer = keyword.Name
	handle.Store = true
	doc.AddFieldMappingsAt(fieldHandle, handle)

	sortKey := bleve.NewTextFieldMapping()
	sortKey.Analyzer = keyword.Name
	sortKey.Store = false
	doc.AddFieldMappingsAt(fieldDisplaySort, sortKey)

	name := bleve.NewTextFieldMapping()
	name.Analyzer = en.AnalyzerName
	name.Store = true
	doc.AddFieldMappingsAt(fieldDisplayName, name)

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = en.AnalyzerName
	desc.Store = false
	doc.AddFieldMappingsAt(fieldDescription, desc)

	im.DefaultMapping = doc
	return im
}
