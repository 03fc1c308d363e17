package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"catalog-search/internal/catalog/filters"
)

// SearchParams is a parsed and normalized catalog search request.
type SearchParams struct {
	Query       string
	Sort        string
	Page        int
	Limit       int
	CategoryIDs []string
	Status      []string
	Form        []string
	Brand       []string
	Ingredient  []string
	Sizes       []string
	PriceMin    *float64
	PriceMax    *float64
	RegionID    string
}

// Offset is the index of the first record of the requested page.
func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Selection is the facet filter part of the request.
func (p SearchParams) Selection() filters.Selection {
	return filters.Selection{
		CategoryIDs:   p.CategoryIDs,
		StatusIDs:     p.Status,
		FormIDs:       p.Form,
		BrandIDs:      p.Brand,
		IngredientIDs: p.Ingredient,
		PriceMin:      p.PriceMin,
		PriceMax:      p.PriceMax,
	}
}

type paramLimits struct {
	defaultLimit int
	maxLimit     int
}

// parseQueryParams reads GET parameters. Multi-valued filters accept repeated
// keys, the key[] form and comma separated lists.
func parseQueryParams(values url.Values, limits paramLimits) SearchParams {
	multi := func(key string) []string {
		raw := append(append([]string{}, values[key]...), values[key+"[]"]...)
		return parseStringArray(raw)
	}

	p := SearchParams{
		Query:       strings.TrimSpace(values.Get("q")),
		Sort:        strings.TrimSpace(values.Get("sort")),
		CategoryIDs: multi("category_id"),
		Status:      multi("status"),
		Form:        multi("form"),
		Brand:       multi("brand"),
		Ingredient:  multi("ingredient"),
		Sizes:       multi("size"),
		PriceMin:    filters.ParsePrice(values.Get("price_min")),
		PriceMax:    filters.ParsePrice(values.Get("price_max")),
		RegionID:    strings.TrimSpace(values.Get("region_id")),
	}
	p.Page, p.Limit = normalizePaging(values.Get("page"), values.Get("limit"), limits)
	return p
}

// parseBodyParams reads a decoded POST body that already passed the search schema.
func parseBodyParams(body map[string]interface{}, limits paramLimits) SearchParams {
	str := func(key string) string {
		if s, ok := body[key].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}
	price := func(key string) *float64 {
		switch v := body[key].(type) {
		case float64:
			return filters.ParsePrice(strconv.FormatFloat(v, 'f', -1, 64))
		case string:
			return filters.ParsePrice(v)
		}
		return nil
	}

	p := SearchParams{
		Query:       str("q"),
		Sort:        str("sort"),
		CategoryIDs: parseStringArray(body["category_id"]),
		Status:      parseStringArray(body["status"]),
		Form:        parseStringArray(body["form"]),
		Brand:       parseStringArray(body["brand"]),
		Ingredient:  parseStringArray(body["ingredient"]),
		Sizes:       parseStringArray(body["size"]),
		PriceMin:    price("price_min"),
		PriceMax:    price("price_max"),
		RegionID:    str("region_id"),
	}
	p.Page, p.Limit = normalizePaging(fmt.Sprint(body["page"]), fmt.Sprint(body["limit"]), limits)
	return p
}

// normalizePaging keeps page at 1 or more and limit within 1..maxLimit.
func normalizePaging(rawPage, rawLimit string, limits paramLimits) (int, int) {
	page := 1
	if n, ok := parsePositiveInt(rawPage); ok {
		page = n
	}

	limit := limits.defaultLimit
	if n, ok := parsePositiveInt(rawLimit); ok {
		limit = n
	}
	if limits.maxLimit > 0 && limit > limits.maxLimit {
		limit = limits.maxLimit
	}
	return page, limit
}

func parsePositiveInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// parseStringArray accepts a comma separated string or a list of strings and
// returns the trimmed, deduplicated, non-empty values. Never nil.
func parseStringArray(raw interface{}) []string {
	result := []string{}
	if raw == nil {
		return result
	}

	seen := make(map[string]bool)
	add := func(s string) {
		for _, part := range strings.Split(s, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" && !seen[trimmed] {
				result = append(result, trimmed)
				seen[trimmed] = true
			}
		}
	}

	switch v := raw.(type) {
	case string:
		add(v)
	case []string:
		for _, s := range v {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	return result
}
