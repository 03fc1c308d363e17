// Package filters turns facet selections into search index filter clauses.
//
// Clauses use the Elasticsearch query_string syntax and are meant to be ANDed
// together by the index client.
package filters

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"catalog-search/internal/models"
)

// MaxValuesPerFacet caps the accepted values of one facet; the rest are ignored.
const MaxValuesPerFacet = 40

// Selection is a normalized set of user filter choices.
type Selection struct {
	CategoryIDs   []string
	StatusIDs     []string
	FormIDs       []string
	BrandIDs      []string
	IngredientIDs []string
	PriceMin      *float64
	PriceMax      *float64
}

// BuildFilterExpressions returns one clause per active facet, in a fixed field order.
func BuildFilterExpressions(sel Selection) []string {
	clauses := make([]string, 0, 7)

	for _, f := range []struct {
		field  string
		values []string
	}{
		{models.FacetFieldCategoryIDs, sel.CategoryIDs},
		{models.FacetFieldStatus, sel.StatusIDs},
		{models.FacetFieldForm, sel.FormIDs},
		{models.FacetFieldBrand, sel.BrandIDs},
		{models.FacetFieldIngredient, sel.IngredientIDs},
	} {
		if clause := orClause(f.field, f.values); clause != "" {
			clauses = append(clauses, clause)
		}
	}

	lo, hasMin := validBound(sel.PriceMin)
	hi, hasMax := validBound(sel.PriceMax)
	if hasMin && hasMax && lo > hi {
		lo, hi = hi, lo
	}
	if hasMin {
		clauses = append(clauses, fmt.Sprintf("%s:>=%s", models.FacetFieldPrice, formatNumber(lo)))
	}
	if hasMax {
		clauses = append(clauses, fmt.Sprintf("%s:<=%s", models.FacetFieldPrice, formatNumber(hi)))
	}

	return clauses
}

// HasFacetFilters reports whether sel narrows results by anything besides categories.
func (sel Selection) HasFacetFilters() bool {
	sel.CategoryIDs = nil
	return len(BuildFilterExpressions(sel)) > 0
}

func orClause(field string, values []string) string {
	terms := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if len(terms) == MaxValuesPerFacet {
			break
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		terms = append(terms, fmt.Sprintf(`%s:"%s"`, field, Escape(v)))
	}

	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	default:
		return "(" + strings.Join(terms, " OR ") + ")"
	}
}

// Escape backslash-escapes backslashes and double quotes for use inside a quoted term.
func Escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}

func validBound(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return 0, false
	}
	return *v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePrice reads a user supplied bound. Malformed, negative and non-finite input yields nil.
func ParsePrice(raw string) *float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	if _, ok := validBound(&v); !ok {
		return nil
	}
	return &v
}
