// Package store reads catalog records from the PostgreSQL commerce schema.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"catalog-search/internal/common/errors"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/models"
)

// Store is the structured catalog store.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-store"}),
	}
}

// RecordsByIDs loads products with their producer, categories and variant prices.
// The order of the result is unspecified; unknown ids are skipped.
func (s *Store) RecordsByIDs(ctx context.Context, ids []string) ([]models.CatalogRecord, error) {
	if len(ids) == 0 {
		return []models.CatalogRecord{}, nil
	}
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, queryProductsByIDs, pq.Array(ids))
	if err != nil {
		return nil, s.queryError(ctx, "product", err)
	}
	records := make([]models.CatalogRecord, 0, len(ids))
	index := make(map[string]int, len(ids))
	for rows.Next() {
		var (
			rec            models.CatalogRecord
			metadata       []byte
			producerHandle sql.NullString
			producerTitle  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Handle, &metadata, &producerHandle, &producerTitle); err != nil {
			rows.Close()
			return nil, s.queryError(ctx, "product", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				s.logger.Warn("invalid product metadata", map[string]interface{}{"productId": rec.ID, "error": err})
				rec.Metadata = nil
			}
		}
		if producerHandle.Valid || producerTitle.Valid {
			rec.Producer = &models.Producer{Handle: producerHandle.String, Title: producerTitle.String}
		}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, s.queryError(ctx, "product", err)
	}
	rows.Close()

	if len(records) == 0 {
		return records, nil
	}
	found := make([]string, len(records))
	for i, r := range records {
		found[i] = r.ID
	}

	if err := s.attachCategories(ctx, found, records, index); err != nil {
		return nil, err
	}
	if err := s.attachVariants(ctx, found, records, index); err != nil {
		return nil, err
	}

	s.logger.Debug("records loaded", map[string]interface{}{
		"requested": len(ids),
		"found":     len(records),
		"duration":  time.Since(start).Milliseconds(),
	})
	return records, nil
}

func (s *Store) attachCategories(ctx context.Context, ids []string, records []models.CatalogRecord, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, queryCategoriesByProductIDs, pq.Array(ids))
	if err != nil {
		return s.queryError(ctx, "product_category", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var c models.Category
		if err := rows.Scan(&productID, &c.ID, &c.Handle, &c.Name); err != nil {
			return s.queryError(ctx, "product_category", err)
		}
		if i, ok := index[productID]; ok {
			records[i].Categories = append(records[i].Categories, c)
		}
	}
	if err := rows.Err(); err != nil {
		return s.queryError(ctx, "product_category", err)
	}
	return nil
}

func (s *Store) attachVariants(ctx context.Context, ids []string, records []models.CatalogRecord, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, queryPricesByProductIDs, pq.Array(ids))
	if err != nil {
		return s.queryError(ctx, "product_variant", err)
	}
	defer rows.Close()

	// variant position per product, by variant id
	positions := make(map[string]map[string]int)
	for rows.Next() {
		var productID, variantID string
		var amount sql.NullFloat64
		var currency sql.NullString
		if err := rows.Scan(&productID, &variantID, &amount, &currency); err != nil {
			return s.queryError(ctx, "product_variant", err)
		}
		i, ok := index[productID]
		if !ok {
			continue
		}
		if positions[productID] == nil {
			positions[productID] = make(map[string]int)
		}
		pos, seen := positions[productID][variantID]
		if !seen {
			pos = len(records[i].Variants)
			positions[productID][variantID] = pos
			records[i].Variants = append(records[i].Variants, models.Variant{ID: variantID})
		}
		if amount.Valid {
			records[i].Variants[pos].Prices = append(records[i].Variants[pos].Prices, models.Price{
				Amount:       amount.Float64,
				CurrencyCode: currency.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return s.queryError(ctx, "product_variant", err)
	}
	return nil
}

// ProducerTitlesByHandles maps producer handles to titles.
func (s *Store) ProducerTitlesByHandles(ctx context.Context, handles []string) (map[string]string, error) {
	return s.namesByHandles(ctx, "producer", queryProducersByHandles, handles)
}

// CategoryNamesByHandles maps category handles to names.
func (s *Store) CategoryNamesByHandles(ctx context.Context, handles []string) (map[string]string, error) {
	return s.namesByHandles(ctx, "product_category", queryCategoriesByHandles, handles)
}

func (s *Store) namesByHandles(ctx context.Context, entity, query string, handles []string) (map[string]string, error) {
	out := make(map[string]string, len(handles))
	if len(handles) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, query, pq.Array(handles))
	if err != nil {
		return nil, s.queryError(ctx, entity, err)
	}
	defer rows.Close()

	for rows.Next() {
		var handle, name string
		if err := rows.Scan(&handle, &name); err != nil {
			return nil, s.queryError(ctx, entity, err)
		}
		out[handle] = name
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError(ctx, entity, err)
	}
	return out, nil
}

// RegionByID returns the region or nil when it does not exist.
func (s *Store) RegionByID(ctx context.Context, id string) (*models.Region, error) {
	var r models.Region
	err := s.db.QueryRowContext(ctx, queryRegionByID, id).Scan(&r.ID, &r.Name, &r.CurrencyCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, s.queryError(ctx, "region", err)
	}
	return &r, nil
}

// ProductIDsPage pages published product ids in id order.
func (s *Store) ProductIDsPage(ctx context.Context, offset, limit int) (models.PageResult, error) {
	rows, err := s.db.QueryContext(ctx, queryProductIDsPage, offset, limit)
	if err != nil {
		return models.PageResult{}, s.queryError(ctx, "product", err)
	}
	defer rows.Close()

	var res models.PageResult
	for rows.Next() {
		var id string
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return models.PageResult{}, s.queryError(ctx, "product", err)
		}
		res.IDs = append(res.IDs, id)
		res.TotalCount = &total
	}
	if err := rows.Err(); err != nil {
		return models.PageResult{}, s.queryError(ctx, "product", err)
	}
	res.ItemCount = len(res.IDs)
	return res, nil
}

func (s *Store) queryError(ctx context.Context, entity string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewStoreTimeoutError(entity)
	}
	return errors.NewStoreQueryFailedError(entity, err)
}
