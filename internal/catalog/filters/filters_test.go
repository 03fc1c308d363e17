package filters

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestBuildFilterExpressions(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{
			name: "empty selection",
			sel:  Selection{},
			want: []string{},
		},
		{
			name: "multi value category is one OR clause in given order",
			sel:  Selection{CategoryIDs: []string{"A", "B"}},
			want: []string{`(facet_category_ids:"A" OR facet_category_ids:"B")`},
		},
		{
			name: "single value has no parentheses",
			sel:  Selection{BrandIDs: []string{"brand-orling"}},
			want: []string{`facet_brand:"brand-orling"`},
		},
		{
			name: "blank and duplicate values are dropped",
			sel:  Selection{FormIDs: []string{" capsules ", "", "capsules"}},
			want: []string{`facet_form:"capsules"`},
		},
		{
			name: "quotes and backslashes are escaped",
			sel:  Selection{StatusIDs: []string{`say "hi"`, `a\b`}},
			want: []string{`(facet_status:"say \"hi\"" OR facet_status:"a\\b")`},
		},
		{
			name: "fields keep a fixed order",
			sel: Selection{
				IngredientIDs: []string{"ingredient-zinc"},
				StatusIDs:     []string{"bio"},
				CategoryIDs:   []string{"pcat_1"},
			},
			want: []string{
				`facet_category_ids:"pcat_1"`,
				`facet_status:"bio"`,
				`facet_ingredient:"ingredient-zinc"`,
			},
		},
		{
			name: "price range",
			sel:  Selection{PriceMin: ptr(10), PriceMax: ptr(99.5)},
			want: []string{`facet_price:>=10`, `facet_price:<=99.5`},
		},
		{
			name: "min above max is swapped",
			sel:  Selection{PriceMin: ptr(50), PriceMax: ptr(10)},
			want: []string{`facet_price:>=10`, `facet_price:<=50`},
		},
		{
			name: "negative and non-finite bounds are dropped",
			sel:  Selection{PriceMin: ptr(-1), PriceMax: ptr(math.Inf(1))},
			want: []string{},
		},
		{
			name: "NaN min keeps max",
			sel:  Selection{PriceMin: ptr(math.NaN()), PriceMax: ptr(20)},
			want: []string{`facet_price:<=20`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilterExpressions(tt.sel))
		})
	}
}

func TestBuildFilterExpressions_CapsValuesPerFacet(t *testing.T) {
	values := make([]string, 55)
	for i := range values {
		values[i] = fmt.Sprintf("pcat_%02d", i)
	}

	got := BuildFilterExpressions(Selection{CategoryIDs: values})

	require.Len(t, got, 1)
	assert.Equal(t, MaxValuesPerFacet, strings.Count(got[0], "facet_category_ids:"))
	assert.Contains(t, got[0], `"pcat_39"`)
	assert.NotContains(t, got[0], `"pcat_40"`)
}

func TestSelection_HasFacetFilters(t *testing.T) {
	assert.False(t, Selection{}.HasFacetFilters())
	assert.False(t, Selection{CategoryIDs: []string{"cat_1"}}.HasFacetFilters())
	assert.False(t, Selection{BrandIDs: []string{" "}, PriceMin: ptr(-1)}.HasFacetFilters())
	assert.True(t, Selection{BrandIDs: []string{"brand-acme"}}.HasFacetFilters())
	assert.True(t, Selection{CategoryIDs: []string{"cat_1"}, PriceMax: ptr(50)}.HasFacetFilters())
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"abc", nil},
		{"-5", nil},
		{"NaN", nil},
		{"Inf", nil},
		{"12", ptr(12)},
		{" 12,50 ", ptr(12.5)},
	}
	for _, tt := range tests {
		got := ParsePrice(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.Equal(t, *tt.want, *got)
	}
}
