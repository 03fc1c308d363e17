// Package facets derives facet tags from catalog records at index time and turns
// the index's facet counts into labeled lists at query time.
package facets

import (
	"math"
	"strings"

	"catalog-search/internal/models"
)

// Builder derives FacetDocuments. The zero value is not usable; use NewBuilder.
type Builder struct {
	ingredientTaxonomy string
}

type BuilderOption func(*Builder)

// WithIngredientTaxonomy sets the handle of the ingredient root category.
func WithIngredientTaxonomy(handle string) BuilderOption {
	return func(b *Builder) {
		b.ingredientTaxonomy = normalizeTaxonomy(handle)
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{ingredientTaxonomy: DefaultIngredientTaxonomy}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// BuildFacetDocument derives the facet tags of rec with the default ingredient taxonomy.
func BuildFacetDocument(rec models.CatalogRecord) models.FacetDocument {
	return defaultBuilder.Build(rec)
}

// Build never fails: missing or malformed fields leave the matching facet empty.
func (b *Builder) Build(rec models.CatalogRecord) models.FacetDocument {
	text := searchableText(rec)
	inStock := isInStock(rec)

	doc := models.FacetDocument{
		Status:      b.status(rec, text, inStock),
		Form:        forms(text),
		Brand:       brand(rec),
		Ingredient:  b.ingredients(rec),
		CategoryIDs: categoryIDs(rec),
		InStock:     inStock,
	}
	if price, ok := FirstOf(rec, PriceExtractors); ok {
		rounded := math.Round(price*100) / 100
		doc.Price = &rounded
	}
	return doc
}

func isInStock(rec models.CatalogRecord) bool {
	qty, ok := FirstOf(rec, StockExtractors)
	if !ok {
		return true
	}
	return qty > 0
}

// searchableText is the normalized title followed by category paths and names.
func searchableText(rec models.CatalogRecord) string {
	parts := []string{rec.Title}
	parts = append(parts, metadataStrings(rec, "category_paths")...)
	if p, ok := lookupPath(rec.Metadata, "category_path"); ok {
		if s, ok := p.(string); ok {
			parts = append(parts, s)
		}
	}
	for _, c := range rec.Categories {
		parts = append(parts, c.Name)
	}
	return normalizeText(strings.Join(parts, " "))
}

func (b *Builder) status(rec models.CatalogRecord, text string, inStock bool) []string {
	out := newOrderedSet()
	if inStock {
		out.add(StatusInStock)
	}
	for _, flag := range metadataStrings(rec, "active_flags") {
		out.add(strings.ToLower(strings.TrimSpace(flag)))
	}
	tokens := words(text)
	for _, def := range keywordStatuses {
		for _, kw := range def.Keywords {
			if _, ok := tokens[kw]; ok {
				out.add(def.ID)
				break
			}
		}
	}
	return out.values()
}

func forms(text string) []string {
	out := newOrderedSet()
	for _, def := range FormDefinitions {
		for _, kw := range def.Keywords {
			if strings.Contains(text, kw) {
				out.add(def.ID)
				break
			}
		}
	}
	return out.values()
}

func brand(rec models.CatalogRecord) []string {
	if rec.Producer == nil {
		return []string{}
	}
	slug := Slugify(rec.Producer.Handle)
	if slug == "" {
		slug = Slugify(rec.Producer.Title)
	}
	if slug == "" {
		return []string{}
	}
	return []string{BrandPrefix + slug}
}

func (b *Builder) ingredients(rec models.CatalogRecord) []string {
	prefix := b.ingredientTaxonomy + "-"
	out := newOrderedSet()
	for _, c := range rec.Categories {
		handle := strings.ToLower(strings.TrimSpace(c.Handle))
		if !strings.HasPrefix(handle, prefix) {
			continue
		}
		if slug := Slugify(strings.TrimPrefix(handle, prefix)); slug != "" {
			out.add(IngredientPrefix + slug)
		}
	}
	return out.values()
}

func categoryIDs(rec models.CatalogRecord) []string {
	out := newOrderedSet()
	for _, c := range rec.Categories {
		out.add(strings.TrimSpace(c.ID))
	}
	return out.values()
}

// orderedSet keeps insertion order and ignores empty strings.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	return s.items
}
