package facets

import "strings"

// Definition is a compiled-in facet entry. Keywords are only used by form facets.
type Definition struct {
	ID       string
	Label    string
	Keywords []string
}

// Status ids.
const (
	StatusInStock = "in-stock"
	StatusBio     = "bio"
	StatusVegan   = "vegan"
	StatusNew     = "new"
	StatusSale    = "sale"
	StatusTip     = "tip"
)

// Namespaces for dynamic facet ids.
const (
	BrandPrefix      = "brand-"
	IngredientPrefix = "ingredient-"
)

// DefaultIngredientTaxonomy is the handle of the root category of the active ingredient tree.
const DefaultIngredientTaxonomy = "active-ingredients"

// normalizeTaxonomy is shared by indexing and label resolution so both build
// the same "<taxonomy>-<slug>" handles.
func normalizeTaxonomy(handle string) string {
	if handle = strings.Trim(strings.ToLower(handle), "- "); handle != "" {
		return handle
	}
	return DefaultIngredientTaxonomy
}

var StatusDefinitions = []Definition{
	{ID: StatusInStock, Label: "Skladem"},
	{ID: StatusBio, Label: "Bio"},
	{ID: StatusVegan, Label: "Vegan"},
	{ID: StatusNew, Label: "Novinka"},
	{ID: StatusSale, Label: "Akce"},
	{ID: StatusTip, Label: "Tip"},
}

// FormDefinitions keywords are matched as substrings of the normalized
// (lowercased, diacritic-free) title and category text.
var FormDefinitions = []Definition{
	{ID: "capsules", Label: "Kapsle", Keywords: []string{"kapsl", "capsul", "caps"}},
	{ID: "tablets", Label: "Tablety", Keywords: []string{"tablet", "tbl"}},
	{ID: "softgel", Label: "Softgel", Keywords: []string{"softgel", "gelove"}},
	{ID: "powder", Label: "Prášek", Keywords: []string{"prasek", "prasku", "powder"}},
	{ID: "liquid", Label: "Tekutá forma", Keywords: []string{"tekut", "liquid", "roztok"}},
	{ID: "drink", Label: "Nápoj", Keywords: []string{"napoj", "drink", "shot"}},
	{ID: "drops", Label: "Kapky", Keywords: []string{"kapky", "kapek", "drops"}},
	{ID: "spray", Label: "Sprej", Keywords: []string{"sprej", "spray"}},
	{ID: "syrup", Label: "Sirup", Keywords: []string{"sirup", "syrup"}},
}

// keywordStatuses are status tags detected from whole words of the searchable text.
var keywordStatuses = []Definition{
	{ID: StatusBio, Keywords: []string{"bio", "organic"}},
	{ID: StatusVegan, Keywords: []string{"vegan", "veganske", "vegansky", "veganska"}},
}

// fallbackLabels names static-dimension ids the index knows about but the
// definitions above do not.
var fallbackLabels = map[string]string{
	"bestseller":   "Bestseller",
	"limited":      "Limitovaná edice",
	"gluten-free":  "Bez lepku",
	"lactose-free": "Bez laktózy",
	"clearance":    "Doprodej",
	"preorder":     "Předobjednávka",
}
