package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStringArray(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want []string
	}{
		{"nil", nil, []string{}},
		{"comma list", " a, b ,,a ", []string{"a", "b"}},
		{"string slice", []string{"a,b", "c", "b"}, []string{"a", "b", "c"}},
		{"interface slice", []interface{}{"x", 3, " y "}, []string{"x", "y"}},
		{"unsupported", 42, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStringArray(tt.raw))
		})
	}
}

func TestNormalizePaging(t *testing.T) {
	limits := paramLimits{defaultLimit: 12, maxLimit: 100}
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 12},
		{"3", "20", 3, 20},
		{"0", "0", 1, 12},
		{"-2", "-5", 1, 12},
		{"abc", "1.5", 1, 12},
		{"2", "1000", 2, 100},
		{"<nil>", "<nil>", 1, 12},
	}

	for _, tt := range tests {
		page, limit := normalizePaging(tt.page, tt.limit, limits)
		assert.Equal(t, tt.wantPage, page, "page %q", tt.page)
		assert.Equal(t, tt.wantLimit, limit, "limit %q", tt.limit)
	}
}

func TestParseQueryParams(t *testing.T) {
	values := url.Values{
		"q":           {"  zinc  "},
		"status":      {"bio,vegan", "bio"},
		"status[]":    {"new"},
		"ingredient":  {"ingredient-zinc"},
		"price_min":   {"abc"},
		"price_max":   {"250"},
		"category_id": {""},
		"region_id":   {"reg_1"},
	}

	p := parseQueryParams(values, paramLimits{defaultLimit: 12, maxLimit: 100})
	assert.Equal(t, "zinc", p.Query)
	assert.Equal(t, []string{"bio", "vegan", "new"}, p.Status)
	assert.Equal(t, []string{"ingredient-zinc"}, p.Ingredient)
	assert.Equal(t, []string{}, p.CategoryIDs)
	assert.Nil(t, p.PriceMin)
	if assert.NotNil(t, p.PriceMax) {
		assert.Equal(t, 250.0, *p.PriceMax)
	}
	assert.Equal(t, "reg_1", p.RegionID)
	assert.Equal(t, 0, p.Offset())
}
