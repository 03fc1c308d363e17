// Package strategy decides how a catalog query is answered and runs that plan.
package strategy

import (
	"fmt"
	"strings"
)

// Strategy is the retrieval path chosen for one query.
type Strategy int

const (
	// IndexOnly answers from the full-text index alone.
	IndexOnly Strategy = iota + 1
	// SizeOnlyFallback answers from the attribute-value lookup alone.
	SizeOnlyFallback
	// IndexSizeIntersection intersects full-text hits with attribute-value matches.
	IndexSizeIntersection
	// DefaultListing hands the query to the default structured listing.
	DefaultListing
)

// SortNewest is the storefront's default sort order.
const SortNewest = "newest"

// Select picks the strategy for a query. It depends on nothing but its arguments.
func Select(query, sort string, categoryIDs, sizes []string) Strategy {
	hasQuery := strings.TrimSpace(query) != ""
	hasCategory := hasAny(categoryIDs)
	hasSize := hasAny(sizes)

	if hasSize && !hasCategory {
		if hasQuery {
			return IndexSizeIntersection
		}
		return SizeOnlyFallback
	}

	sort = strings.ToLower(strings.TrimSpace(sort))
	if hasQuery && !hasCategory && !hasSize && (sort == "" || sort == SortNewest) {
		return IndexOnly
	}

	return DefaultListing
}

// Match calls the function for s. Every strategy has its own parameter, so adding
// a strategy breaks each call site until it handles the new case. Values outside
// the enumeration take the deferred branch.
func Match[T any](s Strategy, indexOnly, sizeOnly, intersection, deferred func() T) T {
	switch s {
	case IndexOnly:
		return indexOnly()
	case SizeOnlyFallback:
		return sizeOnly()
	case IndexSizeIntersection:
		return intersection()
	default:
		return deferred()
	}
}

func (s Strategy) String() string {
	return Match(s,
		func() string { return "index_only" },
		func() string { return "size_only_fallback" },
		func() string { return "index_size_intersection" },
		func() string {
			if s != DefaultListing {
				return fmt.Sprintf("strategy(%d)", int(s))
			}
			return "default_listing"
		},
	)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func hasAny(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
