package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// Filters
	Tags        []string // Filter by exact tag names
	MinRating   int      // Minimum rating (0-100)
	MaxRating   int      // Maximum rating
	MinDuration float64  // Minimum duration in seconds (scenes only)
	MaxDuration float64  // Maximum duration in seconds

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent", "rating", "duration"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include type and tag facet counts
	Highlight     bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string  `json:"query"`
	Total  uint64  `json:"total"`
	TookMs int64   `json:"took_ms"`
	Hits   []Hit   `json:"hits"`
	Facets Facets  `json:"facets,omitzero"`
}

// Hit represents a single search result.
type Hit struct {
	ID         string            `json:"id"`
	InstanceID string            `json:"instance_id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Studio     string            `json:"studio,omitempty"`
	Performers []string          `json:"performers,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Rating     int               `json:"rating,omitempty"`
	Duration   float64           `json:"duration,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts.
type Facets struct {
	Types []FacetCount `json:"types,omitempty"`
	Tags  []FacetCount `json:"tags,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("type", bleve.NewFacetRequest("type", 10))
		searchRequest.AddFacet("tags", bleve.NewFacetRequest("tags", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("studio")
		searchRequest.Highlight.AddField("performers")
	}

	searchRequest.Fields = []string{
		"id", "instance_id", "type", "name", "studio", "performers",
		"tags", "rating", "duration",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{Score: hit.Score}

		if v, ok := hit.Fields["id"].(string); ok {
			searchHit.ID = v
		}
		if v, ok := hit.Fields["instance_id"].(string); ok {
			searchHit.InstanceID = v
		}
		if v, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(v)
		}
		if v, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = v
		}
		if v, ok := hit.Fields["studio"].(string); ok {
			searchHit.Studio = v
		}
		searchHit.Performers = stringsField(hit.Fields["performers"])
		searchHit.Tags = stringsField(hit.Fields["tags"])
		if v, ok := hit.Fields["rating"].(float64); ok {
			searchHit.Rating = int(v)
		}
		if v, ok := hit.Fields["duration"].(float64); ok {
			searchHit.Duration = v
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// stringsField normalizes a stored field that Bleve returns as either a
// string (single value) or []interface{} (multiple values).
func stringsField(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query matches the entity name plus the denormalized
	// studio and performer names, so "first studio" finds the studio's
	// scenes as well as the studio itself.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		studioMatch := bleve.NewMatchQuery(params.Query)
		studioMatch.SetField("studio")
		studioMatch.SetBoost(1.5)
		textQueries = append(textQueries, studioMatch)

		performerMatch := bleve.NewMatchQuery(params.Query)
		performerMatch.SetField("performers")
		performerMatch.SetBoost(1.5)
		textQueries = append(textQueries, performerMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Type filter
	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	// Tag filter (exact match, OR across tags)
	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tag := range params.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	// Rating range filter
	if params.MinRating > 0 || params.MaxRating > 0 {
		minR := float64(params.MinRating)
		maxR := float64(params.MaxRating)
		if params.MaxRating == 0 {
			maxR = 100
		}
		rangeQuery := bleve.NewNumericRangeQuery(&minR, &maxR)
		rangeQuery.SetField("rating")
		queries = append(queries, rangeQuery)
	}

	// Duration range filter
	if params.MinDuration > 0 || params.MaxDuration > 0 {
		minD := params.MinDuration
		maxD := params.MaxDuration
		if params.MaxDuration == 0 {
			maxD = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&minD, &maxD)
		rangeQuery.SetField("duration")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name", "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "rating":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"rating"})
		} else {
			req.SortBy([]string{"-rating"})
		}
	case "duration":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"duration"})
		} else {
			req.SortBy([]string{"-duration"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if typeFacet, ok := result.Facets["type"]; ok {
		for _, term := range typeFacet.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if tagFacet, ok := result.Facets["tags"]; ok {
		for _, term := range tagFacet.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
