package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"catalog-search/internal/common/errors"
	"catalog-search/internal/common/metrics"
	"catalog-search/internal/models"
)

// Mapping is the index definition the facet fields rely on.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":                 {"type": "keyword"},
      "title":              {"type": "text"},
      "handle":             {"type": "keyword"},
      "text":               {"type": "text"},
      "facet_status":       {"type": "keyword"},
      "facet_form":         {"type": "keyword"},
      "facet_brand":        {"type": "keyword"},
      "facet_ingredient":   {"type": "keyword"},
      "facet_category_ids": {"type": "keyword"},
      "facet_in_stock":     {"type": "boolean"},
      "facet_price":        {"type": "scaled_float", "scaling_factor": 100}
    }
  }
}`

// BulkResult counts the outcome of one bulk request.
type BulkResult struct {
	Indexed int
	Failed  int
	Errors  []string
}

// EnsureIndex creates the index with Mapping when it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := esapi.IndicesExistsRequest{Index: []string{c.index}}.Do(ctx, c.es)
	if err != nil {
		return false, errors.NewSearchIndexUnavailableError(err)
	}
	exists.Body.Close()

	if exists.StatusCode == 200 {
		return false, nil
	}
	if exists.StatusCode != 404 {
		return false, errors.NewSearchQueryFailedError(c.index, exists.Status())
	}

	res, err := esapi.IndicesCreateRequest{
		Index: c.index,
		Body:  strings.NewReader(Mapping),
	}.Do(ctx, c.es)
	if err != nil {
		return false, errors.NewSearchIndexUnavailableError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return false, errors.NewSearchQueryFailedError(c.index, res.Status())
	}

	c.logger.Info("index created", nil)
	return true, nil
}

// IndexDocuments writes docs in one bulk request. Per-document failures are
// reported in the result; only a failed request returns an error.
func (c *Client) IndexDocuments(ctx context.Context, docs []models.IndexedProduct) (BulkResult, error) {
	if len(docs) == 0 {
		return BulkResult{}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": c.index, "_id": doc.ID}}
		if err := enc.Encode(meta); err != nil {
			return BulkResult{}, fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return BulkResult{}, fmt.Errorf("encode document %s: %w", doc.ID, err)
		}
	}

	res, err := esapi.BulkRequest{Index: c.index, Body: &buf}.Do(ctx, c.es)
	if err != nil {
		metrics.DocumentsIndexed.WithLabelValues("error").Add(float64(len(docs)))
		return BulkResult{}, errors.NewSearchIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.DocumentsIndexed.WithLabelValues("error").Add(float64(len(docs)))
		return BulkResult{}, errors.NewIndexingFailedError(res.Status())
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return BulkResult{}, fmt.Errorf("decode bulk response: %w", err)
	}

	var result BulkResult
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Error != nil || op.Status > 299 {
				result.Failed++
				reason := ""
				if op.Error != nil {
					reason = op.Error.Type + ": " + op.Error.Reason
				}
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", op.ID, reason))
				continue
			}
			result.Indexed++
		}
	}

	metrics.DocumentsIndexed.WithLabelValues("indexed").Add(float64(result.Indexed))
	metrics.DocumentsIndexed.WithLabelValues("failed").Add(float64(result.Failed))
	if result.Failed > 0 {
		c.logger.Warn("bulk indexing had failures", map[string]interface{}{
			"indexed": result.Indexed,
			"failed":  result.Failed,
		})
	}
	return result, nil
}
