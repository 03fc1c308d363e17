package strategy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"catalog-search/internal/catalog/cache"
	"catalog-search/internal/catalog/collector"
	apperrors "catalog-search/internal/common/errors"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/common/metrics"
	"catalog-search/internal/models"
)

var (
	ErrIndexSearchFailed    = errors.New("INDEX_SEARCH_FAILED")
	ErrSizeLookupFailed     = errors.New("SIZE_LOOKUP_FAILED")
	ErrRecordFetchFailed    = errors.New("RECORD_FETCH_FAILED")
	ErrCollaboratorsMissing = errors.New("COLLABORATORS_MISSING")
)

// Shared id-list key namespaces.
const (
	SizeKeyPrefix = "catalog:sizes:"
	TextKeyPrefix = "catalog:text:"
)

// DefaultIndexWindow is the deepest hit the index pages to with from/size
// (Elasticsearch's index.max_result_window).
const DefaultIndexWindow = 10000

// SearchIndex is the full-text index.
type SearchIndex interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// RecordStore loads full catalog records.
type RecordStore interface {
	RecordsByIDs(ctx context.Context, ids []string) ([]models.CatalogRecord, error)
}

// AttributeLookup pages through the products carrying an attribute value.
type AttributeLookup interface {
	ProductsByAttributeValue(ctx context.Context, value, query string, offset, limit int) (models.PageResult, error)
}

// ListStore is an optional tier shared between replicas, consulted on a local cache miss.
type ListStore interface {
	GetIDs(ctx context.Context, key string) ([]string, bool, error)
	SetIDs(ctx context.Context, key string, ids []string) error
}

// Query is one catalog request as the engine sees it.
type Query struct {
	Text        string
	Sort        string
	CategoryIDs []string
	Sizes       []string
	Filters     []string
	Offset      int
	Limit       int
}

// Result is a page answered by the engine.
type Result struct {
	Strategy          Strategy
	Records           []models.CatalogRecord
	Count             int
	FacetDistribution map[string]map[string]int
	FacetStats        map[string]models.FacetStats

	// MatchedIDs is the full id list a size strategy paged over. Facet counts
	// for the page are restricted to it.
	MatchedIDs []string
}

type Engine struct {
	index     SearchIndex
	store     RecordStore
	lookup    AttributeLookup
	sizeCache *cache.Cache[[]string]
	textCache *cache.Cache[[]string]
	shared    ListStore
	window    int
	logger    logger.Logger
}

type Option func(*Engine)

// WithSharedStore adds a second cache tier behind the in-process caches.
func WithSharedStore(s ListStore) Option {
	return func(e *Engine) { e.shared = s }
}

// WithIndexWindow overrides DefaultIndexWindow. Values below 1 are ignored.
func WithIndexWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.window = n
		}
	}
}

func NewEngine(index SearchIndex, store RecordStore, lookup AttributeLookup, sizeCache, textCache *cache.Cache[[]string], log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		index:     index,
		store:     store,
		lookup:    lookup,
		sizeCache: sizeCache,
		textCache: textCache,
		window:    DefaultIndexWindow,
		logger:    log.WithFields(map[string]interface{}{"component": "strategy-engine"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run answers q with the selected strategy and its fallbacks. It reports false
// when the caller should serve the default listing instead; upstream failures
// are logged and never returned.
func (e *Engine) Run(ctx context.Context, q Query) (*Result, bool) {
	selected := Select(q.Text, q.Sort, q.CategoryIDs, q.Sizes)
	metrics.StrategySelected.WithLabelValues(selected.String()).Inc()

	log := e.logger.WithFields(map[string]interface{}{
		"strategy": selected.String(),
		"query":    q.Text,
	})

	res := Match(selected,
		func() *Result {
			res, err := e.timed(IndexOnly, func() (*Result, error) { return e.runIndexOnly(ctx, q) })
			if err != nil {
				e.fallback(log, IndexOnly, DefaultListing, err)
				return nil
			}
			return res
		},
		func() *Result {
			return e.sizeOnlyOrDefer(ctx, q, log)
		},
		func() *Result {
			res, err := e.timed(IndexSizeIntersection, func() (*Result, error) { return e.runIntersection(ctx, q) })
			if err != nil {
				e.fallback(log, IndexSizeIntersection, SizeOnlyFallback, err)
				return e.sizeOnlyOrDefer(ctx, q, log)
			}
			return res
		},
		func() *Result {
			return nil
		},
	)
	return res, res != nil
}

// RunFiltered answers a query that Run deferred from the index, so facet filters
// still narrow a plain browse. It reports false when the index cannot answer.
func (e *Engine) RunFiltered(ctx context.Context, q Query) (*Result, bool) {
	metrics.StrategySelected.WithLabelValues(IndexOnly.String()).Inc()
	log := e.logger.WithFields(map[string]interface{}{
		"strategy": IndexOnly.String(),
		"query":    q.Text,
		"filters":  q.Filters,
	})

	res, err := e.timed(IndexOnly, func() (*Result, error) { return e.runIndexOnly(ctx, q) })
	if err != nil {
		e.fallback(log, IndexOnly, DefaultListing, err)
		return nil, false
	}
	return res, true
}

// sizeOnlyOrDefer returns nil when the default listing has to answer.
func (e *Engine) sizeOnlyOrDefer(ctx context.Context, q Query, log logger.Logger) *Result {
	res, err := e.timed(SizeOnlyFallback, func() (*Result, error) { return e.runSizeOnly(ctx, q) })
	if err != nil {
		e.fallback(log, SizeOnlyFallback, DefaultListing, err)
		return nil
	}
	return res
}

func (e *Engine) fallback(log logger.Logger, from, to Strategy, err error) {
	category, retryable := "OTHER", false
	if code, ok := apperrors.CodeOf(err); ok {
		category = apperrors.GetErrorCategory(code)
		retryable = apperrors.IsRetryableErrorCode(code)
	}
	metrics.StrategyFallbacks.WithLabelValues(from.String(), to.String(), category).Inc()
	log.Warn("strategy failed, falling back", map[string]interface{}{
		"from":      from.String(),
		"to":        to.String(),
		"category":  category,
		"retryable": retryable,
		"error":     err,
	})
}

func (e *Engine) timed(s Strategy, run func() (*Result, error)) (*Result, error) {
	start := time.Now()
	res, err := run()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.StrategyDuration.WithLabelValues(s.String(), outcome).Observe(time.Since(start).Seconds())
	return res, err
}

func (e *Engine) runIndexOnly(ctx context.Context, q Query) (*Result, error) {
	if e.index == nil || e.store == nil {
		return nil, ErrCollaboratorsMissing
	}

	resp, err := e.index.Search(ctx, models.SearchRequest{
		Query:   strings.TrimSpace(q.Text),
		Filters: q.Filters,
		Facets:  models.SearchFacetFields,
		Offset:  q.Offset,
		Limit:   q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexSearchFailed, err)
	}

	records, err := e.recordsInOrder(ctx, resp.IDs)
	if err != nil {
		return nil, err
	}

	return &Result{
		Strategy:          IndexOnly,
		Records:           records,
		Count:             resp.EstimatedTotal,
		FacetDistribution: resp.FacetDistribution,
		FacetStats:        resp.FacetStats,
	}, nil
}

func (e *Engine) runSizeOnly(ctx context.Context, q Query) (*Result, error) {
	if e.lookup == nil || e.store == nil {
		return nil, ErrCollaboratorsMissing
	}

	ids, err := e.sizeIDs(ctx, q.Sizes, q.Text)
	if err != nil {
		return nil, err
	}
	res, err := e.page(ctx, SizeOnlyFallback, ids, q)
	if err != nil {
		return nil, err
	}
	res.MatchedIDs = ids
	return res, nil
}

func (e *Engine) runIntersection(ctx context.Context, q Query) (*Result, error) {
	if e.index == nil || e.lookup == nil || e.store == nil {
		return nil, ErrCollaboratorsMissing
	}

	var textIDs, sizeIDs []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := e.textIDs(gctx, q.Text)
		textIDs = ids
		return err
	})
	g.Go(func() error {
		ids, err := e.sizeIDs(gctx, q.Sizes, q.Text)
		sizeIDs = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(sizeIDs))
	for _, id := range sizeIDs {
		allowed[id] = struct{}{}
	}
	joined := make([]string, 0, len(textIDs))
	for _, id := range textIDs {
		if _, ok := allowed[id]; ok {
			joined = append(joined, id)
		}
	}

	res, err := e.page(ctx, IndexSizeIntersection, joined, q)
	if err != nil {
		return nil, err
	}
	res.MatchedIDs = joined
	return res, nil
}

// textIDs collects the hit ids for the query in relevance order. Hits past the
// index window are not reachable with from/size paging and are left out.
func (e *Engine) textIDs(ctx context.Context, text string) ([]string, error) {
	key := normalizeQuery(text)
	return e.textCache.GetOrCreate(ctx, key, e.sharedTier(TextKeyPrefix+key, func(ctx context.Context) ([]string, error) {
		ids, err := collector.CollectIDs(ctx, func(ctx context.Context, offset, limit int) (models.PageResult, error) {
			if offset >= e.window {
				return models.PageResult{}, nil
			}
			resp, err := e.index.Search(ctx, models.SearchRequest{
				Query:   key,
				Offset:  offset,
				Limit:   min(limit, e.window-offset),
				IDsOnly: true,
			})
			if err != nil {
				return models.PageResult{}, err
			}
			total := min(resp.EstimatedTotal, e.window)
			return models.PageResult{IDs: resp.IDs, ItemCount: len(resp.IDs), TotalCount: &total}, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIndexSearchFailed, err)
		}
		return ids, nil
	}))
}

// sizeIDs collects the ids of every requested size concurrently and merges them
// in the order the sizes were requested.
func (e *Engine) sizeIDs(ctx context.Context, sizes []string, text string) ([]string, error) {
	values := uniqueNonBlank(sizes)
	perValue := make([][]string, len(values))
	query := normalizeQuery(text)

	g, gctx := errgroup.WithContext(ctx)
	for i, value := range values {
		key := sizeKey(value, query)
		g.Go(func() error {
			ids, err := e.sizeCache.GetOrCreate(gctx, key, e.sharedTier(SizeKeyPrefix+key, func(ctx context.Context) ([]string, error) {
				ids, err := collector.CollectIDs(ctx, func(ctx context.Context, offset, limit int) (models.PageResult, error) {
					return e.lookup.ProductsByAttributeValue(ctx, value, query, offset, limit)
				})
				if err != nil {
					return nil, fmt.Errorf("%w: value %q: %w", ErrSizeLookupFailed, value, err)
				}
				return ids, nil
			}))
			perValue[i] = ids
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, ids := range perValue {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged, nil
}

// sharedTier wraps build so the shared store is read before and written after it.
// Shared store failures only cost a rebuild.
func (e *Engine) sharedTier(key string, build cache.Factory[[]string]) cache.Factory[[]string] {
	if e.shared == nil {
		return build
	}
	return func(ctx context.Context) ([]string, error) {
		ids, ok, err := e.shared.GetIDs(ctx, key)
		if err != nil {
			e.logger.Warn("shared id store read failed", map[string]interface{}{"key": key, "error": err})
		} else if ok {
			return ids, nil
		}

		ids, err = build(ctx)
		if err != nil {
			return nil, err
		}
		if err := e.shared.SetIDs(ctx, key, ids); err != nil {
			e.logger.Warn("shared id store write failed", map[string]interface{}{"key": key, "error": err})
		}
		return ids, nil
	}
}

func (e *Engine) page(ctx context.Context, s Strategy, ids []string, q Query) (*Result, error) {
	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > len(ids) {
		start = len(ids)
	}
	end := len(ids)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	records, err := e.recordsInOrder(ctx, ids[start:end])
	if err != nil {
		return nil, err
	}
	return &Result{Strategy: s, Records: records, Count: len(ids)}, nil
}

// recordsInOrder loads ids and returns the records in the order of ids.
// Ids the store does not know are skipped.
func (e *Engine) recordsInOrder(ctx context.Context, ids []string) ([]models.CatalogRecord, error) {
	if len(ids) == 0 {
		return []models.CatalogRecord{}, nil
	}
	records, err := e.store.RecordsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordFetchFailed, err)
	}

	byID := make(map[string]models.CatalogRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	out := make([]models.CatalogRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// sizeKey length-prefixes value so that no value/query pair shares a key with another.
func sizeKey(value, query string) string {
	return strconv.Itoa(len(value)) + ":" + value + "|" + query
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func uniqueNonBlank(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
