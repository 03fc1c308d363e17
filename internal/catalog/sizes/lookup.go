// Package sizes resolves size attribute values to product ids and shares the
// resulting id lists between replicas.
package sizes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"catalog-search/internal/common/errors"
	commonhttp "catalog-search/internal/common/http"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/models"
)

// Lookup calls the attribute-value service:
// GET {base}/attribute-values/{value}/products?q=&offset=&limit=
type Lookup struct {
	baseURL string
	client  *commonhttp.Client
	logger  logger.Logger
}

type lookupResponse struct {
	ProductIDs []string `json:"product_ids"`
	Count      *int     `json:"count"`
}

func NewLookup(baseURL string, client *commonhttp.Client, log logger.Logger) *Lookup {
	return &Lookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log.WithFields(map[string]interface{}{"component": "attribute-lookup"}),
	}
}

func (l *Lookup) ProductsByAttributeValue(ctx context.Context, value, query string, offset, limit int) (models.PageResult, error) {
	params := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		params.Set("q", query)
	}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/attribute-values/%s/products?%s", l.baseURL, url.PathEscape(value), params.Encode())

	var body lookupResponse
	if err := l.client.GetJSON(ctx, endpoint, &body); err != nil {
		l.logger.Warn("attribute lookup failed", map[string]interface{}{
			"value":  value,
			"offset": offset,
			"error":  err,
		})
		return models.PageResult{}, errors.NewAttributeLookupFailedError(value, err)
	}

	return models.PageResult{
		IDs:        body.ProductIDs,
		ItemCount:  len(body.ProductIDs),
		TotalCount: body.Count,
	}, nil
}
