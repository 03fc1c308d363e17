package facets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Nature's Way":     "nature-s-way",
		"  Dr. Böhm ":      "dr-bohm",
		"Šípek & Rakytník": "sipek-rakytnik",
		"vitamin-c":        "vitamin-c",
		"---":              "",
		"Omega 3":          "omega-3",
		"Weiß":             "weiss",
		"Łódź":             "lodz",
		"Søren Ærø":        "soren-aero",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Nature s way", Humanize("brand-nature-s-way", BrandPrefix))
	assert.Equal(t, "Vitamin c", Humanize("ingredient-vitamin_c", IngredientPrefix))
	assert.Equal(t, "Gluten free", Humanize("gluten--free", ""))
	assert.Equal(t, "Čaj", Humanize("čaj", ""))
	assert.Equal(t, "brand-", Humanize("brand-", BrandPrefix))
}
