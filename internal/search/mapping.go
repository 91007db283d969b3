package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for catalog documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on names/titles with English stemming
//  2. Denormalized studio/performer/tag names searchable from one query
//  3. Exact keyword matching for the type filter
//  4. Numeric range queries for rating and duration
//  5. Term vectors on key fields for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target, boosted at query time
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Details - searchable but not stored (can be large markdown)
	detailsFieldMapping := bleve.NewTextFieldMapping()
	detailsFieldMapping.Analyzer = en.AnalyzerName
	detailsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("details", detailsFieldMapping)

	// Studio - denormalized studio name
	studioFieldMapping := bleve.NewTextFieldMapping()
	studioFieldMapping.Analyzer = en.AnalyzerName
	studioFieldMapping.Store = true
	studioFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("studio", studioFieldMapping)

	// Performers - denormalized performer names
	performersFieldMapping := bleve.NewTextFieldMapping()
	performersFieldMapping.Analyzer = en.AnalyzerName
	performersFieldMapping.Store = true
	performersFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("performers", performersFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Type - for filtering by document type
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// ID and instance - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	instanceFieldMapping := bleve.NewTextFieldMapping()
	instanceFieldMapping.Analyzer = keyword.Name
	instanceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("instance_id", instanceFieldMapping)

	// Tags - exact tag names, facetable
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	ratingFieldMapping := bleve.NewNumericFieldMapping()
	ratingFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("rating", ratingFieldMapping)

	durationFieldMapping := bleve.NewNumericFieldMapping()
	durationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("duration", durationFieldMapping)

	// Timestamps - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
