package strategy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		sort       string
		categories []string
		sizes      []string
		want       Strategy
	}{
		{name: "size without query", sizes: []string{"M"}, want: SizeOnlyFallback},
		{name: "size with blank query", query: "   ", sizes: []string{"M"}, want: SizeOnlyFallback},
		{name: "size with query", query: "protein", sizes: []string{"M", "L"}, want: IndexSizeIntersection},
		{name: "size ignores sort", query: "protein", sort: "price_asc", sizes: []string{"M"}, want: IndexSizeIntersection},
		{name: "size with category defers", query: "protein", categories: []string{"pcat_1"}, sizes: []string{"M"}, want: DefaultListing},
		{name: "query only", query: "vitamin c", want: IndexOnly},
		{name: "query with newest sort", query: "vitamin c", sort: "Newest", want: IndexOnly},
		{name: "query with explicit sort defers", query: "vitamin c", sort: "price_asc", want: DefaultListing},
		{name: "query with category defers", query: "vitamin c", categories: []string{"pcat_1"}, want: DefaultListing},
		{name: "nothing at all", want: DefaultListing},
		{name: "blank filter values are inactive", query: "zinc", categories: []string{""}, sizes: []string{" "}, want: IndexOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.query, tt.sort, tt.categories, tt.sizes)
			assert.Equal(t, tt.want, got)
			// same inputs, same answer
			assert.Equal(t, got, Select(tt.query, tt.sort, tt.categories, tt.sizes))
		})
	}
}

func TestMatch(t *testing.T) {
	branch := func(s Strategy) string {
		return Match(s,
			func() string { return "index" },
			func() string { return "size" },
			func() string { return "both" },
			func() string { return "default" },
		)
	}

	assert.Equal(t, "index", branch(IndexOnly))
	assert.Equal(t, "size", branch(SizeOnlyFallback))
	assert.Equal(t, "both", branch(IndexSizeIntersection))
	assert.Equal(t, "default", branch(DefaultListing))
	assert.Equal(t, "default", branch(Strategy(0)))
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "index_only", IndexOnly.String())
	assert.Equal(t, "size_only_fallback", SizeOnlyFallback.String())
	assert.Equal(t, "index_size_intersection", IndexSizeIntersection.String())
	assert.Equal(t, "default_listing", DefaultListing.String())
	assert.Equal(t, "strategy(9)", Strategy(9).String())

	raw, err := json.Marshal(map[string]Strategy{"strategy": SizeOnlyFallback})
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"size_only_fallback"}`, string(raw))
}
