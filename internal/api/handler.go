package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-search/internal/catalog/facets"
	"catalog-search/internal/catalog/filters"
	"catalog-search/internal/catalog/store"
	"catalog-search/internal/catalog/strategy"
	"catalog-search/internal/common/errors"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/models"
)

const maxBodyBytes = 64 << 10

// SearchEngine answers a query with one of the index/size strategies.
// RunFiltered serves a deferred query from the index when facet filters are set.
type SearchEngine interface {
	Run(ctx context.Context, q strategy.Query) (*strategy.Result, bool)
	RunFiltered(ctx context.Context, q strategy.Query) (*strategy.Result, bool)
}

// DefaultLister serves the plain catalog listing the engine defers to.
type DefaultLister interface {
	DefaultListing(ctx context.Context, q store.ListingQuery) ([]models.CatalogRecord, int, error)
}

type RegionLookup interface {
	RegionByID(ctx context.Context, id string) (*models.Region, error)
}

type HandlerConfig struct {
	DefaultLimit       int
	MaxLimit           int
	RequestTimeout     time.Duration
	IngredientTaxonomy string
	LabelLanguage      string
}

// SearchHandler serves /store/catalog/search.
type SearchHandler struct {
	engine  SearchEngine
	lister  DefaultLister
	index   strategy.SearchIndex
	labels  facets.LabelSource
	regions RegionLookup
	mapper  *facets.Mapper
	cfg     HandlerConfig
	logger  logger.Logger
}

// NewSearchHandler wires the handler. index, labels and regions may be nil;
// the response then carries empty facet counts, humanized labels or no currency.
func NewSearchHandler(
	engine SearchEngine,
	lister DefaultLister,
	index strategy.SearchIndex,
	labels facets.LabelSource,
	regions RegionLookup,
	cfg HandlerConfig,
	log logger.Logger,
) *SearchHandler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 12
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.LabelLanguage == "" {
		cfg.LabelLanguage = "cs"
	}
	return &SearchHandler{
		engine:  engine,
		lister:  lister,
		index:   index,
		labels:  labels,
		regions: regions,
		mapper:  facets.NewMapper(cfg.LabelLanguage),
		cfg:     cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "search-handler"}),
	}
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Products     []models.CatalogRecord `json:"products"`
	Count        int                    `json:"count"`
	Page         int                    `json:"page"`
	Limit        int                    `json:"limit"`
	Strategy     string                 `json:"strategy"`
	CurrencyCode string                 `json:"currency_code,omitempty"`
	Facets       facets.Facets          `json:"facets"`
}

func (h *SearchHandler) limits() paramLimits {
	return paramLimits{defaultLimit: h.cfg.DefaultLimit, maxLimit: h.cfg.MaxLimit}
}

// Search handles GET requests.
func (h *SearchHandler) Search(c *gin.Context) {
	h.respond(c, parseQueryParams(c.Request.URL.Query(), h.limits()))
}

// SearchBody handles POST requests with a JSON body.
func (h *SearchHandler) SearchBody(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidSearchRequest), err)
		return
	}
	if strings.TrimSpace(string(raw)) == "" {
		raw = []byte("{}")
	}

	result, err := searchSchema.ValidateBytes(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidSearchRequest), err)
		return
	}
	if !result.Valid {
		details := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidSearchRequest),
			fmt.Errorf("invalid search request: %s", strings.Join(details, "; ")))
		return
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidSearchRequest), err)
		return
	}

	h.respond(c, parseBodyParams(body, h.limits()))
}

func (h *SearchHandler) respond(c *gin.Context, p SearchParams) {
	ctx := c.Request.Context()
	if h.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.RequestTimeout)
		defer cancel()
	}

	log := h.logger.WithFields(map[string]interface{}{"request_id": c.GetString(ctxRequestID)})
	selection := p.Selection()
	clauses := filters.BuildFilterExpressions(selection)

	resp := SearchResponse{Page: p.Page, Limit: p.Limit}

	q := strategy.Query{
		Text:        p.Query,
		Sort:        p.Sort,
		CategoryIDs: p.CategoryIDs,
		Sizes:       p.Sizes,
		Filters:     clauses,
		Offset:      p.Offset(),
		Limit:       p.Limit,
	}
	res, ok := h.engine.Run(ctx, q)
	if !ok && selection.HasFacetFilters() {
		// the default listing only knows text and categories
		res, ok = h.engine.RunFiltered(ctx, q)
		if !ok {
			log.Warn("facet filters ignored by default listing", map[string]interface{}{"filters": clauses})
		}
	}

	var (
		dist  map[string]map[string]int
		stats map[string]models.FacetStats
	)
	facetQuery := models.SearchRequest{Query: p.Query, Filters: clauses}
	if ok {
		resp.Products = res.Records
		resp.Count = res.Count
		resp.Strategy = res.Strategy.String()
		dist, stats = res.FacetDistribution, res.FacetStats
		if res.MatchedIDs != nil {
			// counts describe exactly the ids the size strategy paged over
			facetQuery = models.SearchRequest{IDs: res.MatchedIDs}
		}
	} else {
		records, total, err := h.lister.DefaultListing(ctx, store.ListingQuery{
			Text:        p.Query,
			Sort:        p.Sort,
			CategoryIDs: p.CategoryIDs,
			Offset:      p.Offset(),
			Limit:       p.Limit,
		})
		if err != nil {
			log.Error("default listing failed", map[string]interface{}{"error": err})
			RespondStandardError(c, errors.NewDefaultListingFailedError(err))
			return
		}
		resp.Products = records
		resp.Count = total
		resp.Strategy = strategy.DefaultListing.String()
	}
	if resp.Products == nil {
		resp.Products = []models.CatalogRecord{}
	}

	if dist == nil {
		dist, stats = h.facetCounts(ctx, log, facetQuery)
	}
	resp.Facets = h.mapper.Map(dist, stats, h.resolveLabels(ctx, log, dist))
	resp.CurrencyCode = h.currency(ctx, log, p.RegionID)

	RespondOK(c, resp)
}

// facetCounts runs a facet-only query for strategies that do not yield counts.
func (h *SearchHandler) facetCounts(ctx context.Context, log logger.Logger, req models.SearchRequest) (map[string]map[string]int, map[string]models.FacetStats) {
	if h.index == nil || (req.IDs != nil && len(req.IDs) == 0) {
		return nil, nil
	}
	req.Facets = models.SearchFacetFields
	req.Limit = 0
	res, err := h.index.Search(ctx, req)
	if err != nil {
		log.Warn("facet query failed", map[string]interface{}{"error": err})
		return nil, nil
	}
	return res.FacetDistribution, res.FacetStats
}

func (h *SearchHandler) resolveLabels(ctx context.Context, log logger.Logger, dist map[string]map[string]int) facets.Labels {
	if h.labels == nil || len(dist) == 0 {
		return facets.Labels{}
	}
	labels, err := facets.ResolveLabels(ctx, h.labels, dist, h.cfg.IngredientTaxonomy)
	if err != nil {
		log.Warn("facet label resolution failed", map[string]interface{}{"error": err})
		return facets.Labels{}
	}
	return labels
}

func (h *SearchHandler) currency(ctx context.Context, log logger.Logger, regionID string) string {
	if h.regions == nil || regionID == "" {
		return ""
	}
	region, err := h.regions.RegionByID(ctx, regionID)
	if err != nil {
		log.Warn("region lookup failed", map[string]interface{}{"region_id": regionID, "error": err})
		return ""
	}
	if region == nil {
		return ""
	}
	return region.CurrencyCode
}
