package facets

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"catalog-search/internal/models"
)

// Extractor reads one candidate value from a record. The bool reports whether
// the candidate produced a usable value.
type Extractor[T any] func(rec models.CatalogRecord) (T, bool)

// FirstOf returns the value of the first extractor that succeeds.
func FirstOf[T any](rec models.CatalogRecord, chain []Extractor[T]) (T, bool) {
	for _, extract := range chain {
		if v, ok := extract(rec); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// StockExtractors find the stock quantity snapshot.
var StockExtractors = []Extractor[float64]{
	metadataNumber("stock_quantity"),
	metadataNumber("stock", "quantity"),
	metadataNumber("top_offer", "stock_quantity"),
}

// PriceExtractors find the display price in major currency units.
var PriceExtractors = []Extractor[float64]{
	validPrice(metadataNumber("top_offer", "price")),
	validPrice(metadataNumber("top_offer", "price_sale")),
	validPrice(metadataNumber("top_offer", "price_vat")),
	validPrice(minVariantPrice),
}

func validPrice(next Extractor[float64]) Extractor[float64] {
	return func(rec models.CatalogRecord) (float64, bool) {
		v, ok := next(rec)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, false
		}
		return v, true
	}
}

// minVariantPrice scans every variant price. Integer amounts are taken to be
// minor units and divided by 100, so a major-unit price of exactly 100 reads as 1.
// TODO: take the scale from the price's currency once the store returns decimal digits.
func minVariantPrice(rec models.CatalogRecord) (float64, bool) {
	found := false
	var lowest float64
	for _, v := range rec.Variants {
		for _, p := range v.Prices {
			amount := p.Amount
			if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
				continue
			}
			if amount == math.Trunc(amount) {
				amount /= 100
			}
			if !found || amount < lowest {
				lowest = amount
				found = true
			}
		}
	}
	return lowest, found
}

func metadataNumber(path ...string) Extractor[float64] {
	return func(rec models.CatalogRecord) (float64, bool) {
		raw, ok := lookupPath(rec.Metadata, path...)
		if !ok {
			return 0, false
		}
		return toNumber(raw)
	}
}

func lookupPath(m map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = m
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func toNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// metadataStrings reads a list of strings or a comma separated string.
func metadataStrings(rec models.CatalogRecord, key string) []string {
	raw, ok := lookupPath(rec.Metadata, key)
	if !ok {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case string:
		out = strings.Split(v, ",")
	case []string:
		out = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
