// Package index reads and writes the product search index in Elasticsearch.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"catalog-search/internal/common/errors"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/models"
)

// TermsAggregationSize bounds the buckets returned per facet dimension.
const TermsAggregationSize = 200

// Client runs searches against one product index.
type Client struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewClient(es *elasticsearch.Client, index string, log logger.Logger) *Client {
	return &Client{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-index", "index": index}),
	}
}

func (c *Client) Index() string {
	return c.index
}

// Search runs req. Filters are query_string clauses and must all match.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(buildSearchBody(req))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	from := req.Offset
	if from < 0 {
		from = 0
	}
	size := req.Limit
	if size < 0 {
		size = 0
	}

	search := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}

	res, err := search.Do(ctx, c.es)
	if err != nil {
		return nil, errors.NewSearchIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		c.logger.Warn("search rejected", map[string]interface{}{
			"status": res.StatusCode,
			"query":  req.Query,
		})
		return nil, errors.NewSearchQueryFailedError(c.index, res.Status())
	}

	var raw searchResult
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return raw.toResponse(req.Facets), nil
}

func buildSearchBody(req models.SearchRequest) map[string]interface{} {
	var must interface{}
	if q := strings.TrimSpace(req.Query); q != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    q,
				"fields":   []string{"title^3", "text"},
				"type":     "best_fields",
				"operator": "and",
			},
		}
	} else {
		must = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	boolQuery := map[string]interface{}{"must": []interface{}{must}}

	filter := make([]interface{}, 0, len(req.Filters)+1)
	if req.IDs != nil {
		filter = append(filter, map[string]interface{}{
			"ids": map[string]interface{}{"values": req.IDs},
		})
	}
	for _, clause := range req.Filters {
		if strings.TrimSpace(clause) == "" {
			continue
		}
		filter = append(filter, map[string]interface{}{
			"query_string": map[string]interface{}{"query": clause},
		})
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]interface{}{
		"query":            map[string]interface{}{"bool": boolQuery},
		"_source":          false,
		"track_total_hits": true,
	}

	if !req.IDsOnly && len(req.Facets) > 0 {
		aggs := make(map[string]interface{}, len(req.Facets))
		for _, field := range req.Facets {
			if field == models.FacetFieldPrice {
				aggs[field] = map[string]interface{}{"stats": map[string]interface{}{"field": field}}
				continue
			}
			aggs[field] = map[string]interface{}{
				"terms": map[string]interface{}{"field": field, "size": TermsAggregationSize},
			}
		}
		body["aggs"] = aggs
	}

	return body
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type termsAggregation struct {
	Buckets []struct {
		Key      interface{} `json:"key"`
		DocCount int         `json:"doc_count"`
	} `json:"buckets"`
}

type statsAggregation struct {
	Count int      `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

func (r searchResult) toResponse(facets []string) *models.SearchResponse {
	out := &models.SearchResponse{
		IDs:               make([]string, 0, len(r.Hits.Hits)),
		EstimatedTotal:    r.Hits.Total.Value,
		FacetDistribution: map[string]map[string]int{},
		FacetStats:        map[string]models.FacetStats{},
	}
	for _, h := range r.Hits.Hits {
		out.IDs = append(out.IDs, h.ID)
	}

	for _, field := range facets {
		raw, ok := r.Aggregations[field]
		if !ok {
			continue
		}
		if field == models.FacetFieldPrice {
			var stats statsAggregation
			if err := json.Unmarshal(raw, &stats); err == nil && stats.Count > 0 && stats.Min != nil && stats.Max != nil {
				out.FacetStats[field] = models.FacetStats{Min: *stats.Min, Max: *stats.Max}
			}
			continue
		}
		var terms termsAggregation
		if err := json.Unmarshal(raw, &terms); err != nil {
			continue
		}
		counts := make(map[string]int, len(terms.Buckets))
		for _, b := range terms.Buckets {
			counts[fmt.Sprint(b.Key)] = b.DocCount
		}
		out.FacetDistribution[field] = counts
	}
	return out
}
