package models

// FacetDocument is the tag set stored in the search index next to a product.
type FacetDocument struct {
	Status      []string `json:"facet_status"`
	Form        []string `json:"facet_form"`
	Brand       []string `json:"facet_brand"`
	Ingredient  []string `json:"facet_ingredient"`
	CategoryIDs []string `json:"facet_category_ids"`
	InStock     bool     `json:"facet_in_stock"`
	Price       *float64 `json:"facet_price,omitempty"`
}

// Index field names for the facet dimensions.
const (
	FacetFieldStatus      = "facet_status"
	FacetFieldForm        = "facet_form"
	FacetFieldBrand       = "facet_brand"
	FacetFieldIngredient  = "facet_ingredient"
	FacetFieldCategoryIDs = "facet_category_ids"
	FacetFieldInStock     = "facet_in_stock"
	FacetFieldPrice       = "facet_price"
)

// FacetOption is one UI-ready facet entry.
type FacetOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FacetStats is the numeric range of a facet across the matching documents.
type FacetStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IndexedProduct is the document written to the search index.
type IndexedProduct struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle,omitempty"`
	Text   string `json:"text,omitempty"`
	FacetDocument
}

// SearchFacetFields are the dimensions requested from the index on every search.
var SearchFacetFields = []string{
	FacetFieldStatus,
	FacetFieldForm,
	FacetFieldBrand,
	FacetFieldIngredient,
	FacetFieldPrice,
}
