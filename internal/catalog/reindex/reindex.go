// Package reindex rebuilds the search index from the structured store.
package reindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-search/internal/catalog/collector"
	"catalog-search/internal/catalog/facets"
	"catalog-search/internal/catalog/index"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/models"
)

const DefaultBatchSize = 200

var ErrNoProducts = errors.New("NO_PRODUCTS")

// Source pages product ids and loads full records.
type Source interface {
	ProductIDsPage(ctx context.Context, offset, limit int) (models.PageResult, error)
	RecordsByIDs(ctx context.Context, ids []string) ([]models.CatalogRecord, error)
}

type Sink interface {
	IndexDocuments(ctx context.Context, docs []models.IndexedProduct) (index.BulkResult, error)
}

type Stats struct {
	Products int
	Batches  int
	index.BulkResult
}

type Reindexer struct {
	source    Source
	sink      Sink
	builder   *facets.Builder
	batchSize int
	logger    logger.Logger
}

func New(source Source, sink Sink, builder *facets.Builder, batchSize int, log logger.Logger) *Reindexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if builder == nil {
		builder = facets.NewBuilder()
	}
	return &Reindexer{
		source:    source,
		sink:      sink,
		builder:   builder,
		batchSize: batchSize,
		logger:    log.WithFields(map[string]interface{}{"component": "reindexer"}),
	}
}

// Run collects every product id, then loads, builds and indexes them batch by batch.
// A failed batch aborts the run; per-document failures are only counted.
func (r *Reindexer) Run(ctx context.Context) (Stats, error) {
	ids, err := collector.CollectIDs(ctx, r.source.ProductIDsPage)
	if err != nil {
		return Stats{}, fmt.Errorf("collect product ids: %w", err)
	}
	if len(ids) == 0 {
		return Stats{}, ErrNoProducts
	}

	stats := Stats{Products: len(ids)}
	for start := 0; start < len(ids); start += r.batchSize {
		end := start + r.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		records, err := r.source.RecordsByIDs(ctx, ids[start:end])
		if err != nil {
			return stats, fmt.Errorf("load batch at %d: %w", start, err)
		}

		docs := make([]models.IndexedProduct, 0, len(records))
		for _, rec := range records {
			docs = append(docs, r.Document(rec))
		}

		res, err := r.sink.IndexDocuments(ctx, docs)
		if err != nil {
			return stats, fmt.Errorf("index batch at %d: %w", start, err)
		}

		stats.Batches++
		stats.Indexed += res.Indexed
		stats.Failed += res.Failed
		stats.Errors = append(stats.Errors, res.Errors...)

		r.logger.Info("batch indexed", map[string]interface{}{
			"batch":   stats.Batches,
			"records": len(records),
			"indexed": res.Indexed,
			"failed":  res.Failed,
		})
	}

	return stats, nil
}

// Document builds the index document for rec.
func (r *Reindexer) Document(rec models.CatalogRecord) models.IndexedProduct {
	parts := []string{rec.Title}
	for _, c := range rec.Categories {
		if c.Name != "" {
			parts = append(parts, c.Name)
		}
	}
	return models.IndexedProduct{
		ID:            rec.ID,
		Title:         rec.Title,
		Handle:        rec.Handle,
		Text:          strings.TrimSpace(strings.Join(parts, " ")),
		FacetDocument: r.builder.Build(rec),
	}
}
