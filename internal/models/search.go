package models

// SearchRequest is one query against the search index.
type SearchRequest struct {
	Query   string
	Filters []string
	Facets  []string
	Offset  int
	Limit   int
	IDsOnly bool
	// IDs restricts hits to these document ids when non-nil.
	IDs []string
}

// SearchResponse is what the search index returns for a SearchRequest.
type SearchResponse struct {
	IDs               []string
	EstimatedTotal    int
	FacetDistribution map[string]map[string]int
	FacetStats        map[string]FacetStats
}

// PageResult is one page from a paginated identifier source.
type PageResult struct {
	IDs        []string
	ItemCount  int
	TotalCount *int
}
